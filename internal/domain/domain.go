package domain

// --- Room state machine ---

// RoomState is the lifecycle stage of a game room. Transitions are driven
// only by control actions and external state reports, never by the poller.
type RoomState string

const (
	StatePending       RoomState = "pending"
	StateSavedSettings RoomState = "savedSettings"
	StateInit          RoomState = "init"
	StatePrepare       RoomState = "prepare"
	StatePlaying       RoomState = "playing"
	StateCompleting    RoomState = "completing"
	StateCompleted     RoomState = "completed"
)

// Valid reports whether s is one of the known room states.
func (s RoomState) Valid() bool {
	switch s {
	case StatePending, StateSavedSettings, StateInit, StatePrepare, StatePlaying, StateCompleting, StateCompleted:
		return true
	}
	return false
}

// ClearsPlayers reports whether entering s opens a fresh player-intake phase.
func (s RoomState) ClearsPlayers() bool {
	return s == StateInit || s == StatePending
}

// --- Model types ---

// Author identifies the origin of a comment or reaction on the external platform.
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Platform names the external source a comment arrived from.
type Platform struct {
	Name string `json:"name"`
}

// Comment is a normalized live-feed comment. IsPlayerComment is set by the
// classifier and is the sole signal routing a comment onto the player channel.
type Comment struct {
	ID              string         `json:"id"`
	Author          Author         `json:"author"`
	Platform        Platform       `json:"platform"`
	Text            string         `json:"text"`
	Timestamp       int64          `json:"timestamp"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	IsPlayerComment bool           `json:"isPlayerComment"`
	System          bool           `json:"system,omitempty"`
}

// Reaction is a normalized live-feed reaction. Only the author ID is needed
// for the game view to locate the player it belongs to.
type Reaction struct {
	Author    Author         `json:"author"`
	Reaction  string         `json:"reaction"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// GameConfig holds the game parameters of a room. CreatedAt is refreshed on
// every update and acts as a cache-busting version marker for subscribers.
type GameConfig struct {
	Theme            string `json:"theme"`
	Keyword          string `json:"keyword"`
	Mode             string `json:"mode"`
	Timer            string `json:"timer"`
	WinnersCount     int    `json:"winnersCount"`
	MaxCharacters    int    `json:"maxCharacters"`
	ScoresForLike    int    `json:"scoresForLike"`
	ScoresForComment int    `json:"scoresForComment"`
	ScoresForCent    int    `json:"scoresForCent"`
	Volume           int    `json:"volume"`
	EnableSound      bool   `json:"enableSound"`
	CreatedAt        int64  `json:"createdAt"`
}

// DefaultGameConfig returns the config a freshly created room starts with.
func DefaultGameConfig(nowMs int64) GameConfig {
	return GameConfig{
		Theme:            "unicorn",
		Keyword:          "hanagold",
		Mode:             "random",
		Timer:            "00:00:30",
		WinnersCount:     3,
		MaxCharacters:    50,
		ScoresForLike:    1,
		ScoresForComment: 5,
		ScoresForCent:    20,
		Volume:           50,
		EnableSound:      true,
		CreatedAt:        nowMs,
	}
}

// GameConfigUpdate is a partial config; nil fields are left untouched on merge.
type GameConfigUpdate struct {
	Theme            *string `json:"theme"`
	Keyword          *string `json:"keyword"`
	Mode             *string `json:"mode"`
	Timer            *string `json:"timer"`
	WinnersCount     *int    `json:"winnersCount"`
	MaxCharacters    *int    `json:"maxCharacters"`
	ScoresForLike    *int    `json:"scoresForLike"`
	ScoresForComment *int    `json:"scoresForComment"`
	ScoresForCent    *int    `json:"scoresForCent"`
	Volume           *int    `json:"volume"`
	EnableSound      *bool   `json:"enableSound"`
}

// Apply merges u into c. CreatedAt is the caller's job.
func (c *GameConfig) Apply(u GameConfigUpdate) {
	if u.Theme != nil {
		c.Theme = *u.Theme
	}
	if u.Keyword != nil {
		c.Keyword = *u.Keyword
	}
	if u.Mode != nil {
		c.Mode = *u.Mode
	}
	if u.Timer != nil {
		c.Timer = *u.Timer
	}
	if u.WinnersCount != nil {
		c.WinnersCount = *u.WinnersCount
	}
	if u.MaxCharacters != nil {
		c.MaxCharacters = *u.MaxCharacters
	}
	if u.ScoresForLike != nil {
		c.ScoresForLike = *u.ScoresForLike
	}
	if u.ScoresForComment != nil {
		c.ScoresForComment = *u.ScoresForComment
	}
	if u.ScoresForCent != nil {
		c.ScoresForCent = *u.ScoresForCent
	}
	if u.Volume != nil {
		c.Volume = *u.Volume
	}
	if u.EnableSound != nil {
		c.EnableSound = *u.EnableSound
	}
}

// FeedConfig holds the external-feed polling parameters of a room. Its
// lifecycle is independent from GameConfig.
type FeedConfig struct {
	Enabled     bool   `json:"enabled"`
	APIVersion  string `json:"apiVersion"`
	VideoID     string `json:"videoId"`
	AccessToken string `json:"accessToken"`
	IntervalMs  int    `json:"intervalMs"`
	Limit       int    `json:"limit"`
	Filter      string `json:"filter"`
	LiveFilter  string `json:"liveFilter"`
	Order       string `json:"order"`
	Fields      string `json:"fields"`
	Since       string `json:"since"`
}

// DefaultFeedConfig returns the feed parameters a fresh room starts with.
// Ordering defaults to reverse-chronological so the most recent comments are
// always seen first under a bounded polling budget.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		APIVersion: "v19.0",
		IntervalMs: 1000,
		Limit:      20,
		Filter:     "toplevel",
		LiveFilter: "filter_low_quality",
		Order:      "reverse_chronological",
		Fields:     "id,message,from{id,name,picture},created_time",
	}
}

// FeedConfigUpdate is a partial feed config; nil fields are left untouched.
type FeedConfigUpdate struct {
	Enabled     *bool   `json:"enabled"`
	APIVersion  *string `json:"apiVersion"`
	VideoID     *string `json:"videoId"`
	AccessToken *string `json:"accessToken"`
	IntervalMs  *int    `json:"intervalMs"`
	Limit       *int    `json:"limit"`
	Filter      *string `json:"filter"`
	LiveFilter  *string `json:"liveFilter"`
	Order       *string `json:"order"`
	Fields      *string `json:"fields"`
	Since       *string `json:"since"`
}

// Apply merges u into c.
func (c *FeedConfig) Apply(u FeedConfigUpdate) {
	if u.Enabled != nil {
		c.Enabled = *u.Enabled
	}
	if u.APIVersion != nil {
		c.APIVersion = *u.APIVersion
	}
	if u.VideoID != nil {
		c.VideoID = *u.VideoID
	}
	if u.AccessToken != nil {
		c.AccessToken = *u.AccessToken
	}
	if u.IntervalMs != nil {
		c.IntervalMs = *u.IntervalMs
	}
	if u.Limit != nil {
		c.Limit = *u.Limit
	}
	if u.Filter != nil {
		c.Filter = *u.Filter
	}
	if u.LiveFilter != nil {
		c.LiveFilter = *u.LiveFilter
	}
	if u.Order != nil {
		c.Order = *u.Order
	}
	if u.Fields != nil {
		c.Fields = *u.Fields
	}
	if u.Since != nil {
		c.Since = *u.Since
	}
}
