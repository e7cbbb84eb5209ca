package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeDeadline   = 5 * time.Second
	sendBufferDepth = 16
)

// clientWriter serializes writes to one connection on its own goroutine so a
// slow client never blocks the hub loop.
type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, sendBufferDepth),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

// enqueue hands msg to the writer without blocking. Returns false when the
// buffer is full, which the hub treats as a slow client.
func (cw *clientWriter) enqueue(msg []byte) bool {
	select {
	case cw.sendCh <- msg:
		return true
	default:
		return false
	}
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}
