package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/VanThanhHoang/server-game/internal/app"
	"github.com/VanThanhHoang/server-game/internal/config"
	"github.com/VanThanhHoang/server-game/internal/feed"
	"github.com/VanThanhHoang/server-game/internal/hub"
	"github.com/VanThanhHoang/server-game/internal/logging"
	"github.com/VanThanhHoang/server-game/internal/metrics"
	"github.com/VanThanhHoang/server-game/internal/poller"
	"github.com/VanThanhHoang/server-game/internal/room"
	"github.com/VanThanhHoang/server-game/internal/server"
	"github.com/VanThanhHoang/server-game/internal/version"
)

func runGracefulShutdown(srv *server.Server, svc *app.Service, h *hub.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		svc.Shutdown()
		h.Stop()

		close(done)
	}()

	return done
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)

	clock := clockwork.NewRealClock()

	store := room.NewStore(clock)
	feedClient := feed.NewClient(cfg.GraphAPIBaseURL, clock)
	scheduler := poller.New(feedClient, clock)
	broadcastHub := hub.NewHub()

	svc := app.NewService(store, feedClient, scheduler, broadcastHub, clock)
	srv := server.NewServer(cfg, svc, broadcastHub)

	done := runGracefulShutdown(srv, svc, broadcastHub)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
