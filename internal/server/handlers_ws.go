package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/VanThanhHoang/server-game/internal/domain"
	"github.com/VanThanhHoang/server-game/internal/hub"
	"github.com/VanThanhHoang/server-game/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // game view and control panel are served from other origins
	},
}

func (s *Server) handleWebSocket(c echo.Context) error {
	roomID := c.Param("room")
	ip := c.RealIP()

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		metrics.WebSocketConnectionsRejected.WithLabelValues(string(reason)).Inc()
		metrics.WebSocketConnectionsTotal.WithLabelValues("rejected").Inc()
		return c.String(http.StatusTooManyRequests, "connection limit reached")
	}
	defer s.limits.Release(ip)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		metrics.WebSocketConnectionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	// Joining delivers the current room view before any later broadcast, so a
	// client missing the initial pushes still converges.
	catchup, err := hub.Envelope(domain.EventRoomSnapshot, s.svc.Snapshot(roomID))
	if err != nil {
		conn.Close()
		metrics.WebSocketConnectionsTotal.WithLabelValues("error").Inc()
		return nil
	}

	if err := s.hub.Join(roomID, conn, catchup); err != nil {
		metrics.WebSocketConnectionsTotal.WithLabelValues("rejected").Inc()
		return nil
	}
	metrics.WebSocketConnectionsTotal.WithLabelValues("success").Inc()

	// Read pump, blocks until the connection closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.LeaveAll(conn)
	return nil
}
