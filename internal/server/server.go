package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/VanThanhHoang/server-game/internal/app"
	"github.com/VanThanhHoang/server-game/internal/config"
	apperrors "github.com/VanThanhHoang/server-game/internal/errors"
	"github.com/VanThanhHoang/server-game/internal/hub"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	svc       *app.Service
	hub       *hub.Hub
	limits    *ConnectionLimits
	startTime time.Time
}

func NewServer(cfg *config.Config, svc *app.Service, h *hub.Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		svc:       svc,
		hub:       h,
		limits:    NewConnectionLimits(cfg.WSMaxConnections, cfg.WSMaxPerIP, cfg.WSConnectionsPerIP, cfg.WSConnectionBurst),
		startTime: time.Now(),
	}

	// Register routes
	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
