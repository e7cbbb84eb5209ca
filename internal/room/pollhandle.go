package room

import "sync"

// PollHandle is the room-owned stop handle of a running feed poll loop. It is
// created before the loop starts so the room can already own it while the
// scheduler spins up; the stop function is attached once the loop exists.
type PollHandle struct {
	mu      sync.Mutex
	stop    func()
	stopped bool
}

// Attach hands the loop's stop function to the handle. If Stop was already
// called the loop is cancelled immediately.
func (h *PollHandle) Attach(stop func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stop = stop
	if h.stopped {
		stop()
	}
}

// Stop cancels the loop. Safe to call more than once and before Attach.
func (h *PollHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	if h.stop != nil {
		h.stop()
	}
}
