package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	// Room config and state machine
	api.POST("/room/config", s.handleGetConfig)
	api.POST("/room/update-config", s.handleUpdateConfig)
	api.POST("/room/report-state", s.handleReportState)
	api.POST("/room/:room/reset", s.handleResetRoom)

	// Control-surface actions from game view and control panel. The path is
	// historical; clients still post actions here.
	api.POST("/load-comment/ducky", s.handleControlAction)

	// Feed polling
	api.POST("/room/:room/feed-config", s.handleUpdateFeedConfig)
	api.POST("/room/:room/feed/start", s.handleStartPolling)
	api.POST("/room/:room/feed/stop", s.handleStopPolling)
	api.POST("/room/:room/feed/backfill", s.handleBackfill)

	// Pinned comment
	api.POST("/room/:room/pin", s.handlePinComment)
	api.POST("/room/:room/unpin", s.handleUnpinComment)

	// Manual injection for dry runs without a live feed
	api.POST("/test/add-comment", s.handleAddComment)
	api.POST("/test/add-reaction", s.handleAddReaction)

	// Feature flags probed by the control panel
	api.GET("/transaction/checkoutFeature", s.handleCheckoutFeature)
	api.GET("/report/reportFeature", s.handleReportFeature)

	// WebSocket subscription
	s.echo.GET("/ws/room/:room", s.handleWebSocket)
}
