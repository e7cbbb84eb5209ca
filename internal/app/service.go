package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/VanThanhHoang/server-game/internal/domain"
	apperrors "github.com/VanThanhHoang/server-game/internal/errors"
	"github.com/VanThanhHoang/server-game/internal/feed"
	"github.com/VanThanhHoang/server-game/internal/game"
	"github.com/VanThanhHoang/server-game/internal/metrics"
	"github.com/VanThanhHoang/server-game/internal/poller"
	"github.com/VanThanhHoang/server-game/internal/room"
)

// DefaultBackfillPages bounds an on-demand feed backfill when the caller does
// not say how deep to go.
const DefaultBackfillPages = 10

// Feed is the on-demand slice of the feed client used for backfills. The
// steady-state poll goes through the scheduler instead.
type Feed interface {
	FetchAll(ctx context.Context, cfg domain.FeedConfig, maxPages int) ([]domain.Comment, error)
}

// PollScheduler starts repeating fetch loops; the returned function stops the
// loop it started.
type PollScheduler interface {
	Start(roomID string, dedup poller.Deduper, cfg domain.FeedConfig, onBatch func([]domain.Comment), onError func(error)) func()
}

// Service is the control surface of the room server. It owns the orchestration
// between the room store, the feed poller and the broadcast publisher; HTTP
// and WebSocket handlers translate wire requests into these calls.
type Service struct {
	store *room.Store
	feed  Feed
	sched PollScheduler
	pub   domain.Publisher
	clock clockwork.Clock
}

func NewService(store *room.Store, feedClient Feed, sched PollScheduler, pub domain.Publisher, clock clockwork.Clock) *Service {
	return &Service{
		store: store,
		feed:  feedClient,
		sched: sched,
		pub:   pub,
		clock: clock,
	}
}

// --- Config ---

// GetConfig returns the room's game config, creating the room on first
// reference, and pushes a config snapshot to current subscribers.
func (s *Service) GetConfig(roomID string) domain.GameConfig {
	r := s.store.GetOrCreate(roomID)
	cfg := r.Config()
	s.publishConfig(r.ID, cfg)
	return cfg
}

// UpdateConfig merges a partial config into the room and moves the room to
// savedSettings. Subscribers receive the merged config and the new state.
func (s *Service) UpdateConfig(roomID string, u domain.GameConfigUpdate) domain.GameConfig {
	r := s.store.GetOrCreate(roomID)
	cfg := r.UpdateConfig(u)
	r.SetState(domain.StateSavedSettings)
	s.publishConfig(r.ID, cfg)
	s.pub.Publish(r.ID, domain.EventRoomState, domain.StateNotice{State: domain.StateSavedSettings})
	slog.Info("Room config updated", "room", r.ID)
	return cfg
}

// UpdateFeedConfig merges partial feed parameters into the room.
func (s *Service) UpdateFeedConfig(roomID string, u domain.FeedConfigUpdate) domain.FeedConfig {
	r := s.store.GetOrCreate(roomID)
	return r.UpdateFeedConfig(u)
}

// --- State machine ---

// ReportState applies an externally reported room state. Unknown states are
// rejected; transitions into an intake-opening state clear the player set.
func (s *Service) ReportState(roomID string, state domain.RoomState) error {
	if !state.Valid() {
		return apperrors.ValidationError("unknown room state").WithField("state", string(state))
	}
	r := s.store.GetOrCreate(roomID)
	s.transition(r, state)
	return nil
}

// Control dispatches a control-surface action for a room. Lifecycle actions
// drive the state machine; every action is mirrored to the room's subscribers
// so game view and control panel stay in sync.
func (s *Service) Control(roomID string, action domain.ControlAction, data any) error {
	r := s.store.GetOrCreate(roomID)

	switch action {
	case domain.ActionInitGame:
		s.transition(r, domain.StateInit)
	case domain.ActionRunGame:
		s.transition(r, domain.StatePlaying)
	case domain.ActionResetGame:
		s.transition(r, domain.StatePending)
	case domain.ActionChangeGameStage, domain.ActionPingController:
		if state, ok := stateFromData(data); ok {
			if !state.Valid() {
				return apperrors.ValidationError("unknown room state").WithField("state", string(state))
			}
			s.transition(r, state)
		}
	}

	s.pub.Publish(r.ID, domain.EventGameAction, domain.ActionNotice{Action: action, Data: data})
	return nil
}

func (s *Service) transition(r *room.Room, state domain.RoomState) {
	r.SetState(state)
	s.pub.Publish(r.ID, domain.EventRoomState, domain.StateNotice{State: state})
	slog.Debug("Room state changed", "room", r.ID, "state", state)
}

// stateFromData extracts a room state from an action payload, which arrives
// either as a bare string or as an object with a state field.
func stateFromData(data any) (domain.RoomState, bool) {
	switch v := data.(type) {
	case string:
		return domain.RoomState(v), v != ""
	case map[string]any:
		if s, ok := v["state"].(string); ok && s != "" {
			return domain.RoomState(s), true
		}
	}
	return "", false
}

// --- Polling ---

// StartPolling begins the feed poll loop for a room. An already-running loop
// is replaced; credentials are validated before anything is touched so a bad
// request never kills a healthy loop.
func (s *Service) StartPolling(roomID string) error {
	r := s.store.GetOrCreate(roomID)
	cfg := r.FeedConfig()
	if err := requireFeedTarget(cfg); err != nil {
		return err.WithField("room", roomID)
	}

	handle := &room.PollHandle{}
	if prev := r.SwapPollHandle(handle); prev != nil {
		prev.Stop()
		metrics.ActivePollLoops.Dec()
	}
	metrics.ActivePollLoops.Inc()

	onBatch := func(batch []domain.Comment) { s.deliver(r, batch) }
	onError := func(err error) {
		s.publishFeedFailure(r, err)
		// A replacement loop may already own the room; only the loop that
		// still holds the handle releases it.
		if r.ClearPollHandle(handle) {
			metrics.ActivePollLoops.Dec()
		}
	}

	handle.Attach(s.sched.Start(r.ID, r, cfg, onBatch, onError))
	slog.Info("Feed polling started", "room", r.ID, "video", cfg.VideoID)
	return nil
}

// StopPolling cancels the room's poll loop. Stopping a room without a running
// loop is a no-op; a room that was never created is an error.
func (s *Service) StopPolling(roomID string) error {
	r, ok := s.store.Get(roomID)
	if !ok {
		return apperrors.NotFoundError("room not found").WithField("room", roomID)
	}
	if h := r.TakePollHandle(); h != nil {
		h.Stop()
		metrics.ActivePollLoops.Dec()
		slog.Info("Feed polling stopped", "room", r.ID)
	}
	return nil
}

// Backfill drains the feed's pagination once and ingests whatever has not been
// delivered yet. It shares the dedup set with the poll loop, so running both
// never duplicates a comment.
func (s *Service) Backfill(ctx context.Context, roomID string, maxPages int) (int, error) {
	r := s.store.GetOrCreate(roomID)
	cfg := r.FeedConfig()
	if err := requireFeedTarget(cfg); err != nil {
		return 0, err.WithField("room", roomID)
	}
	if maxPages <= 0 {
		maxPages = DefaultBackfillPages
	}

	all, err := s.feed.FetchAll(ctx, cfg, maxPages)
	if err != nil {
		return 0, mapFeedError(err)
	}

	fresh := r.FilterNew(all)
	if len(fresh) > 0 {
		s.deliver(r, fresh)
	}
	return len(fresh), nil
}

func requireFeedTarget(cfg domain.FeedConfig) *apperrors.Error {
	if cfg.AccessToken == "" || cfg.VideoID == "" {
		return apperrors.ValidationError("feed access token and video id must be configured before polling").
			WithField("hasAccessToken", cfg.AccessToken != "").
			WithField("hasVideoId", cfg.VideoID != "")
	}
	return nil
}

func mapFeedError(err error) *apperrors.Error {
	var apiErr *feed.APIError
	if errors.As(err, &apiErr) {
		return apperrors.ExternalError("live feed rejected the request", err).
			WithField("status", apiErr.Status)
	}
	return apperrors.ExternalError("live feed unreachable", err)
}

// --- Ingestion ---

// deliver classifies a deduplicated batch, records it, and fans it out: the
// full batch on the dashboard channel, the player-classified subset again on
// the player channel.
func (s *Service) deliver(r *room.Room, batch []domain.Comment) {
	players := game.Classify(r, batch)
	r.AppendComments(batch)

	metrics.CommentsIngestedTotal.WithLabelValues("dashboard").Add(float64(len(batch)))
	s.pub.Publish(r.ID, domain.EventComment, batch)

	if len(players) > 0 {
		metrics.CommentsIngestedTotal.WithLabelValues("player").Add(float64(len(players)))
		s.pub.Publish(r.ID, domain.EventPlayerComment, players)
	}
}

// publishFeedFailure surfaces a poll-loop death on the dashboard channel as a
// synthetic system comment, so operators see it where they are already looking.
func (s *Service) publishFeedFailure(r *room.Room, err error) {
	c := domain.Comment{
		ID:        "system_" + uuid.NewString(),
		Author:    domain.Author{ID: "system", Name: "System"},
		Platform:  domain.Platform{Name: "system"},
		Text:      fmt.Sprintf("Live feed polling stopped: %v", err),
		Timestamp: s.clock.Now().UnixMilli(),
		System:    true,
	}
	r.AppendComments([]domain.Comment{c})
	s.pub.Publish(r.ID, domain.EventComment, []domain.Comment{c})
}

// InjectComment pushes a hand-crafted comment through the regular ingestion
// path, filling in the fields a test client usually leaves blank. The returned
// comment reflects classification.
func (s *Service) InjectComment(roomID string, c domain.Comment) domain.Comment {
	r := s.store.GetOrCreate(roomID)
	now := s.clock.Now().UnixMilli()
	if c.ID == "" {
		c.ID = "injected_" + uuid.NewString()
	}
	if c.Author.ID == "" {
		c.Author.ID = fmt.Sprintf("tester_%d", now)
	}
	if c.Author.Name == "" {
		c.Author.Name = "Test User"
	}
	if c.Platform.Name == "" {
		c.Platform.Name = "facebook"
	}
	if c.Timestamp == 0 {
		c.Timestamp = now
	}

	fresh := r.FilterNew([]domain.Comment{c})
	if len(fresh) == 0 {
		return c
	}
	s.deliver(r, fresh)
	return fresh[0]
}

// InjectReaction records a reaction and broadcasts it to the room.
func (s *Service) InjectReaction(roomID string, re domain.Reaction) domain.Reaction {
	r := s.store.GetOrCreate(roomID)
	if re.Timestamp == 0 {
		re.Timestamp = s.clock.Now().UnixMilli()
	}
	if re.Reaction == "" {
		re.Reaction = "LIKE"
	}
	r.AppendReactions([]domain.Reaction{re})
	metrics.ReactionsIngestedTotal.Inc()
	s.pub.Publish(r.ID, domain.EventReaction, []domain.Reaction{re})
	return re
}

// --- Pinned comment ---

// PinComment pins an already-delivered comment for display.
func (s *Service) PinComment(roomID, commentID string) (domain.Comment, error) {
	r, ok := s.store.Get(roomID)
	if !ok {
		return domain.Comment{}, apperrors.NotFoundError("room not found").WithField("room", roomID)
	}
	c, ok := r.FindComment(commentID)
	if !ok {
		return domain.Comment{}, apperrors.NotFoundError("comment not found").WithField("comment", commentID)
	}
	r.SetPinned(&c)
	s.pub.Publish(r.ID, domain.EventPin, domain.PinNotice{Comment: &c})
	return c, nil
}

// UnpinComment clears the pinned comment.
func (s *Service) UnpinComment(roomID string) {
	r := s.store.GetOrCreate(roomID)
	r.SetPinned(nil)
	s.pub.Publish(r.ID, domain.EventPin, domain.PinNotice{})
}

// --- Lifecycle ---

// ResetRoom stops any poll loop and reverts the room to its initial state.
// Config values survive with a refreshed version timestamp; subscribers stay
// connected and receive the reset state and config.
func (s *Service) ResetRoom(roomID string) domain.GameConfig {
	r := s.store.Reset(roomID)
	if h := r.TakePollHandle(); h != nil {
		h.Stop()
		metrics.ActivePollLoops.Dec()
	}
	cfg := r.Config()
	s.pub.Publish(r.ID, domain.EventRoomState, domain.StateNotice{State: domain.StatePending})
	s.publishConfig(r.ID, cfg)
	slog.Info("Room reset", "room", r.ID)
	return cfg
}

// RoomSnapshot is the catch-up view a freshly joined subscriber receives.
type RoomSnapshot struct {
	State  domain.RoomState  `json:"state"`
	Config domain.GameConfig `json:"config"`
	Pinned *domain.Comment   `json:"pinned,omitempty"`
}

// Snapshot returns the current room view for subscriber catch-up, creating
// the room on first reference.
func (s *Service) Snapshot(roomID string) RoomSnapshot {
	r := s.store.GetOrCreate(roomID)
	return RoomSnapshot{
		State:  r.State(),
		Config: r.Config(),
		Pinned: r.Pinned(),
	}
}

// Shutdown stops every running poll loop. Room state is in-memory only, so
// nothing else needs flushing.
func (s *Service) Shutdown() {
	for _, r := range s.store.Rooms() {
		if h := r.TakePollHandle(); h != nil {
			h.Stop()
			metrics.ActivePollLoops.Dec()
		}
	}
}

func (s *Service) publishConfig(roomID string, cfg domain.GameConfig) {
	s.pub.Publish(roomID, domain.EventRoomConfig, domain.ConfigSnapshot{Key: domain.ConfigSnapshotKey, Config: cfg})
}
