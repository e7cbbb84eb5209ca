package room

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// Store is the in-memory room registry. It is an explicit object with
// controlled lifetime, passed by reference to every component that needs
// room state. There is no process-wide registry.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	clock clockwork.Clock
}

func NewStore(clock clockwork.Clock) *Store {
	return &Store{
		rooms: make(map[string]*Room),
		clock: clock,
	}
}

// GetOrCreate returns the room for roomID, lazily creating it with default
// config on first reference. It is total and idempotent.
func (s *Store) GetOrCreate(roomID string) *Room {
	s.mu.RLock()
	r, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[roomID]; ok {
		return r
	}
	r = newRoom(roomID, s.clock)
	s.rooms[roomID] = r
	return r
}

// Get returns the room for roomID without creating it.
func (s *Store) Get(roomID string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	return r, ok
}

// Rooms returns a snapshot of all rooms, used for shutdown sweeps.
func (s *Store) Rooms() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

// Reset clears the mutable collections and state of a room while preserving
// its config structurally; the config timestamp is refreshed so subscribers
// reload. The room is created first if it never existed.
func (s *Store) Reset(roomID string) *Room {
	r := s.GetOrCreate(roomID)
	r.Reset()
	return r
}
