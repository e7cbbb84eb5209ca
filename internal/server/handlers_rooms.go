package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/VanThanhHoang/server-game/internal/domain"
	apperrors "github.com/VanThanhHoang/server-game/internal/errors"
)

type roomRequest struct {
	Room string `json:"room"`
}

type updateConfigRequest struct {
	Room   string                  `json:"room"`
	Config domain.GameConfigUpdate `json:"config"`
}

type reportStateRequest struct {
	Room  string `json:"room"`
	State string `json:"state"`
}

// controlRequest keeps the wire shape the control panel has always sent.
type controlRequest struct {
	Room   string `json:"room"`
	Config struct {
		Action string `json:"action"`
		Data   any    `json:"data"`
	} `json:"config"`
}

func (s *Server) handleGetConfig(c echo.Context) error {
	var req roomRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Room == "" {
		return apperrors.ValidationError("room is required")
	}

	cfg := s.svc.GetConfig(req.Room)
	return c.JSON(http.StatusOK, domain.ConfigSnapshot{Key: domain.ConfigSnapshotKey, Config: cfg})
}

func (s *Server) handleUpdateConfig(c echo.Context) error {
	var req updateConfigRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Room == "" {
		return apperrors.ValidationError("room is required")
	}

	cfg := s.svc.UpdateConfig(req.Room, req.Config)
	return c.JSON(http.StatusOK, domain.ConfigSnapshot{Key: domain.ConfigSnapshotKey, Config: cfg})
}

func (s *Server) handleReportState(c echo.Context) error {
	var req reportStateRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Room == "" {
		return apperrors.ValidationError("room is required")
	}

	if err := s.svc.ReportState(req.Room, domain.RoomState(req.State)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"state": req.State})
}

func (s *Server) handleControlAction(c echo.Context) error {
	var req controlRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Room == "" {
		return apperrors.ValidationError("room is required")
	}

	action, err := domain.ParseControlAction(req.Config.Action)
	if err != nil {
		return apperrors.ValidationError("unknown control action").WithField("action", req.Config.Action)
	}

	if err := s.svc.Control(req.Room, action, req.Config.Data); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetRoom(c echo.Context) error {
	cfg := s.svc.ResetRoom(c.Param("room"))
	return c.JSON(http.StatusOK, domain.ConfigSnapshot{Key: domain.ConfigSnapshotKey, Config: cfg})
}

func (s *Server) handleCheckoutFeature(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"enable": false})
}

func (s *Server) handleReportFeature(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"enable": true})
}
