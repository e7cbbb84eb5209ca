package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/VanThanhHoang/server-game/internal/domain"
	"github.com/VanThanhHoang/server-game/internal/metrics"
)

const maxClientsPerRoom = 50

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdJoin struct {
	roomID  string
	conn    *websocket.Conn
	catchup []byte
	errCh   chan error
}

func (cmdJoin) hubCmd() {}

type cmdLeave struct {
	roomID string
	conn   *websocket.Conn
}

func (cmdLeave) hubCmd() {}

type cmdLeaveAll struct {
	conn *websocket.Conn
}

func (cmdLeaveAll) hubCmd() {}

type cmdPublish struct {
	roomID string
	data   []byte
}

func (cmdPublish) hubCmd() {}

type cmdClientCount struct {
	roomID  string
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Hub ---

type roomClients map[*websocket.Conn]*clientWriter

// Hub maintains room-scoped multicast groups over a single command goroutine;
// no mutexes. Per-connection writer goroutines absorb slow clients, and a
// client whose buffer stays full is evicted rather than stalling the room.
type Hub struct {
	cmdCh chan hubCmd
	rooms map[string]roomClients
}

func NewHub() *Hub {
	h := &Hub{
		cmdCh: make(chan hubCmd, 256),
		rooms: make(map[string]roomClients),
	}
	go h.run()
	return h
}

// Join adds conn to a room's broadcast group. The catch-up payload (the
// room's current snapshot) is queued for delivery before any later broadcast,
// compensating for the absence of message replay.
func (h *Hub) Join(roomID string, conn *websocket.Conn, catchup []byte) error {
	errCh := make(chan error, 1)
	h.cmdCh <- cmdJoin{roomID: roomID, conn: conn, catchup: catchup, errCh: errCh}
	return <-errCh
}

// Leave removes conn from one room.
func (h *Hub) Leave(roomID string, conn *websocket.Conn) {
	h.cmdCh <- cmdLeave{roomID: roomID, conn: conn}
}

// LeaveAll removes conn from every room it joined. Called on disconnect so
// membership cleanup is total even when the client never left explicitly.
func (h *Hub) LeaveAll(conn *websocket.Conn) {
	h.cmdCh <- cmdLeaveAll{conn: conn}
}

// Publish delivers an event envelope to all connections joined to roomID.
// A room with zero subscribers is a no-op, not an error.
func (h *Hub) Publish(roomID string, event domain.Event, payload any) {
	data, err := Envelope(event, payload)
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "room", roomID, "event", event, "error", err)
		return
	}
	h.cmdCh <- cmdPublish{roomID: roomID, data: data}
}

// ClientCount returns the number of connections joined to roomID.
func (h *Hub) ClientCount(roomID string) int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{roomID: roomID, replyCh: replyCh}
	return <-replyCh
}

// Stop shuts the hub down, closing every client connection.
func (h *Hub) Stop() {
	h.cmdCh <- cmdStop{}
}

// Envelope encodes the wire form of a room push.
func Envelope(event domain.Event, payload any) ([]byte, error) {
	data, err := json.Marshal(struct {
		Event domain.Event `json:"event"`
		Data  any          `json:"data,omitempty"`
	}{Event: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", event, err)
	}
	return data, nil
}

// --- Command loop ---

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdJoin:
			h.handleJoin(c)
		case cmdLeave:
			h.handleLeave(c.roomID, c.conn)
		case cmdLeaveAll:
			h.handleLeaveAll(c.conn)
		case cmdPublish:
			h.handlePublish(c)
		case cmdClientCount:
			c.replyCh <- len(h.rooms[c.roomID])
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleJoin(c cmdJoin) {
	clients, exists := h.rooms[c.roomID]
	if !exists {
		clients = make(roomClients)
		h.rooms[c.roomID] = clients
	}

	if len(clients) >= maxClientsPerRoom {
		slog.Warn("Rejecting client: max clients reached", "room", c.roomID, "max", maxClientsPerRoom)
		c.conn.Close()
		c.errCh <- fmt.Errorf("max clients per room (%d) reached", maxClientsPerRoom)
		return
	}

	cw := newClientWriter(c.conn)
	clients[c.conn] = cw
	metrics.HubConnectedClients.Inc()

	// Catch-up before anything published later; the writer preserves order.
	if c.catchup != nil {
		cw.enqueue(c.catchup)
	}

	slog.Debug("Client joined room", "room", c.roomID, "clients", len(clients))
	c.errCh <- nil
}

func (h *Hub) handleLeave(roomID string, conn *websocket.Conn) {
	clients, exists := h.rooms[roomID]
	if !exists {
		return
	}

	cw, exists := clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(clients, conn)
	metrics.HubConnectedClients.Dec()

	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
	slog.Debug("Client left room", "room", roomID, "clients", len(clients))
}

func (h *Hub) handleLeaveAll(conn *websocket.Conn) {
	for roomID, clients := range h.rooms {
		if _, joined := clients[conn]; joined {
			h.handleLeave(roomID, conn)
		}
	}
}

func (h *Hub) handlePublish(c cmdPublish) {
	clients, exists := h.rooms[c.roomID]
	if !exists {
		return
	}

	var slow []*websocket.Conn
	for conn, cw := range clients {
		if !cw.enqueue(c.data) {
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow client", "room", c.roomID)
		metrics.HubSlowClientsEvicted.Inc()
		h.handleLeave(c.roomID, conn)
	}
}

func (h *Hub) handleStop() {
	for roomID, clients := range h.rooms {
		for _, cw := range clients {
			cw.stop()
			metrics.HubConnectedClients.Dec()
		}
		delete(h.rooms, roomID)
	}
}
