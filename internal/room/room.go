package room

import (
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/VanThanhHoang/server-game/internal/domain"
)

// Room is the per-room state: game config, feed config, state machine value,
// dedup and player-intake sets, and the append-only comment/reaction logs.
//
// All access goes through methods holding the room mutex. The logs grow for
// the lifetime of the process; no eviction is defined.
type Room struct {
	ID string

	mu           sync.Mutex
	state        domain.RoomState
	config       domain.GameConfig
	feedConfig   domain.FeedConfig
	poll         *PollHandle
	seenIDs      map[string]struct{}
	knownPlayers map[string]struct{}
	comments     []domain.Comment
	reactions    []domain.Reaction
	pinned       *domain.Comment

	clock clockwork.Clock
}

func newRoom(id string, clock clockwork.Clock) *Room {
	return &Room{
		ID:           id,
		state:        domain.StatePending,
		config:       domain.DefaultGameConfig(clock.Now().UnixMilli()),
		feedConfig:   domain.DefaultFeedConfig(),
		seenIDs:      make(map[string]struct{}),
		knownPlayers: make(map[string]struct{}),
		clock:        clock,
	}
}

// Reset clears logs, dedup state and player intake, and reverts the state
// machine to pending. Config values survive but get a fresh timestamp.
// Subscriber membership lives in the hub and is untouched.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = domain.StatePending
	r.seenIDs = make(map[string]struct{})
	r.knownPlayers = make(map[string]struct{})
	r.comments = nil
	r.reactions = nil
	r.pinned = nil
	r.config.CreatedAt = r.clock.Now().UnixMilli()
}

// --- State machine ---

func (r *Room) State() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SetState moves the room to s. Entering a state that opens a new intake
// phase clears the known-player set.
func (r *Room) SetState(s domain.RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
	if s.ClearsPlayers() {
		r.knownPlayers = make(map[string]struct{})
	}
}

// --- Config ---

func (r *Room) Config() domain.GameConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

// UpdateConfig merges u into the room config and refreshes the version
// timestamp. Returns the merged config.
func (r *Room) UpdateConfig(u domain.GameConfigUpdate) domain.GameConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.Apply(u)
	r.config.CreatedAt = r.clock.Now().UnixMilli()
	return r.config
}

func (r *Room) FeedConfig() domain.FeedConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.feedConfig
}

// UpdateFeedConfig merges u into the feed config and returns the result.
func (r *Room) UpdateFeedConfig(u domain.FeedConfigUpdate) domain.FeedConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedConfig.Apply(u)
	return r.feedConfig
}

// --- Ingestion ---

// FilterNew drops comments whose IDs were already delivered and records the
// survivors in the seen set. The seen set only shrinks on Reset.
func (r *Room) FilterNew(comments []domain.Comment) []domain.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()
	fresh := comments[:0:0]
	for _, c := range comments {
		if _, dup := r.seenIDs[c.ID]; dup {
			continue
		}
		r.seenIDs[c.ID] = struct{}{}
		fresh = append(fresh, c)
	}
	return fresh
}

// AppendComments records accepted comments in the room log.
func (r *Room) AppendComments(comments []domain.Comment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, comments...)
}

// AppendReactions records accepted reactions in the room log.
func (r *Room) AppendReactions(reactions []domain.Reaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reactions = append(r.reactions, reactions...)
}

// Comments returns a copy of the comment log.
func (r *Room) Comments() []domain.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Comment, len(r.comments))
	copy(out, r.comments)
	return out
}

// Reactions returns a copy of the reaction log.
func (r *Room) Reactions() []domain.Reaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Reaction, len(r.reactions))
	copy(out, r.reactions)
	return out
}

// --- Player intake ---

// IntakeGate returns the configured keyword and whether the room is currently
// admitting players (state init).
func (r *Room) IntakeGate() (keyword string, open bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config.Keyword, r.state == domain.StateInit
}

// AdmitPlayer adds authorID to the known-player set of the current intake
// phase. Returns false if the author was already admitted; membership is a
// gate, not a count.
func (r *Room) AdmitPlayer(authorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, known := r.knownPlayers[authorID]; known {
		return false
	}
	r.knownPlayers[authorID] = struct{}{}
	return true
}

// KnownPlayerCount reports the size of the current intake phase.
func (r *Room) KnownPlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.knownPlayers)
}

// SeenCount reports the size of the dedup set.
func (r *Room) SeenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seenIDs)
}

// --- Pinned comment ---

// FindComment looks a comment up in the log by feed ID.
func (r *Room) FindComment(id string) (domain.Comment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.comments) - 1; i >= 0; i-- {
		if r.comments[i].ID == id {
			return r.comments[i], true
		}
	}
	return domain.Comment{}, false
}

// SetPinned pins c for display; nil unpins.
func (r *Room) SetPinned(c *domain.Comment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pinned = c
}

// Pinned returns the currently pinned comment, if any.
func (r *Room) Pinned() *domain.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pinned == nil {
		return nil
	}
	c := *r.pinned
	return &c
}

// --- Poll handle ownership ---

// SwapPollHandle installs h as the room's poll handle and returns the
// previous one (nil if no loop was active). At most one loop runs per room;
// callers stop the returned handle before relying on the new loop.
func (r *Room) SwapPollHandle(h *PollHandle) (prev *PollHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.poll
	r.poll = h
	return prev
}

// TakePollHandle removes and returns the current poll handle.
func (r *Room) TakePollHandle() *PollHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.poll
	r.poll = nil
	return h
}

// ClearPollHandle removes the poll handle if it still is h. A loop that
// self-stopped after an error must not clear a newer loop's handle. Reports
// whether the handle was cleared.
func (r *Room) ClearPollHandle(h *PollHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.poll == h {
		r.poll = nil
		return true
	}
	return false
}

// Polling reports whether a poll loop currently owns this room.
func (r *Room) Polling() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.poll != nil
}
