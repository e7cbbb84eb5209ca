package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStateValid(t *testing.T) {
	for _, s := range []RoomState{StatePending, StateSavedSettings, StateInit, StatePrepare, StatePlaying, StateCompleting, StateCompleted} {
		assert.True(t, s.Valid(), "state %q should be valid", s)
	}
	assert.False(t, RoomState("paused").Valid())
	assert.False(t, RoomState("").Valid())
}

func TestRoomStateClearsPlayers(t *testing.T) {
	assert.True(t, StateInit.ClearsPlayers())
	assert.True(t, StatePending.ClearsPlayers())
	assert.False(t, StatePlaying.ClearsPlayers())
	assert.False(t, StateSavedSettings.ClearsPlayers())
}

func TestGameConfigApplyMergesOnlySetFields(t *testing.T) {
	cfg := DefaultGameConfig(1000)

	keyword := "gold"
	winners := 5
	cfg.Apply(GameConfigUpdate{Keyword: &keyword, WinnersCount: &winners})

	assert.Equal(t, "gold", cfg.Keyword)
	assert.Equal(t, 5, cfg.WinnersCount)
	// Untouched fields keep their defaults.
	assert.Equal(t, "unicorn", cfg.Theme)
	assert.Equal(t, "00:00:30", cfg.Timer)
	assert.True(t, cfg.EnableSound)
	assert.Equal(t, int64(1000), cfg.CreatedAt)
}

func TestGameConfigApplyCanSetZeroValues(t *testing.T) {
	cfg := DefaultGameConfig(0)

	volume := 0
	enabled := false
	cfg.Apply(GameConfigUpdate{Volume: &volume, EnableSound: &enabled})

	assert.Equal(t, 0, cfg.Volume)
	assert.False(t, cfg.EnableSound)
}

func TestFeedConfigApply(t *testing.T) {
	cfg := DefaultFeedConfig()

	video := "12345"
	token := "secret"
	interval := 2500
	cfg.Apply(FeedConfigUpdate{VideoID: &video, AccessToken: &token, IntervalMs: &interval})

	assert.Equal(t, "12345", cfg.VideoID)
	assert.Equal(t, "secret", cfg.AccessToken)
	assert.Equal(t, 2500, cfg.IntervalMs)
	assert.Equal(t, "v19.0", cfg.APIVersion)
	assert.Equal(t, 20, cfg.Limit)
}

func TestParseControlAction(t *testing.T) {
	action, err := ParseControlAction("initGame")
	require.NoError(t, err)
	assert.Equal(t, ActionInitGame, action)

	_, err = ParseControlAction("launchMissiles")
	assert.Error(t, err)

	_, err = ParseControlAction("")
	assert.Error(t, err)
}
