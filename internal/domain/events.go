package domain

// Event names the logical push channel of a room-scoped broadcast message.
// Comments are delivered twice: every accepted comment on EventComment (the
// dashboard channel) and player-classified ones again on EventPlayerComment.
type Event string

const (
	EventRoomSnapshot  Event = "room.snapshot"
	EventRoomConfig    Event = "room.config"
	EventRoomState     Event = "room.state"
	EventComment       Event = "comment"
	EventPlayerComment Event = "comment.player"
	EventReaction      Event = "reaction"
	EventPin           Event = "comment.pin"
	EventGameAction    Event = "game.action"
)

// Publisher fans a payload out to every connection joined to a room.
// Publishing to a room with zero subscribers is a no-op.
type Publisher interface {
	Publish(roomID string, event Event, payload any)
}

// StateNotice is the payload of an EventRoomState push.
type StateNotice struct {
	State RoomState `json:"state"`
}

// ActionNotice is the payload of an EventGameAction push, mirroring a control
// action to every client in the room.
type ActionNotice struct {
	Action ControlAction `json:"action"`
	Data   any           `json:"data,omitempty"`
}

// PinNotice is the payload of an EventPin push. Comment is nil on unpin.
type PinNotice struct {
	Comment *Comment `json:"comment"`
}

// ConfigSnapshot is the payload of an EventRoomConfig push. Key matches the
// storage key the game view caches configs under.
type ConfigSnapshot struct {
	Key    string     `json:"key"`
	Config GameConfig `json:"config"`
}

// ConfigSnapshotKey is the cache key the game view expects config pushes under.
const ConfigSnapshotKey = "hGame"
