package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/VanThanhHoang/server-game/internal/domain"
	apperrors "github.com/VanThanhHoang/server-game/internal/errors"
)

type pinRequest struct {
	CommentID string `json:"commentId"`
}

type addCommentRequest struct {
	Room     string `json:"room"`
	ID       string `json:"id"`
	Message  string `json:"message"`
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

type addReactionRequest struct {
	Room     string `json:"room"`
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
	Reaction string `json:"reaction"`
}

func (s *Server) handleUpdateFeedConfig(c echo.Context) error {
	var u domain.FeedConfigUpdate
	if err := c.Bind(&u); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	cfg := s.svc.UpdateFeedConfig(c.Param("room"), u)
	// The token never leaves the server once stored.
	if cfg.AccessToken != "" {
		cfg.AccessToken = "***"
	}
	return c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleStartPolling(c echo.Context) error {
	if err := s.svc.StartPolling(c.Param("room")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"polling": true})
}

func (s *Server) handleStopPolling(c echo.Context) error {
	if err := s.svc.StopPolling(c.Param("room")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"polling": false})
}

func (s *Server) handleBackfill(c echo.Context) error {
	pages := 0
	if raw := c.QueryParam("pages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("pages must be an integer").WithField("pages", raw)
		}
		pages = n
	}

	ingested, err := s.svc.Backfill(c.Request().Context(), c.Param("room"), pages)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"ingested": ingested})
}

func (s *Server) handlePinComment(c echo.Context) error {
	var req pinRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.CommentID == "" {
		return apperrors.ValidationError("commentId is required")
	}

	pinned, err := s.svc.PinComment(c.Param("room"), req.CommentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pinned)
}

func (s *Server) handleUnpinComment(c echo.Context) error {
	s.svc.UnpinComment(c.Param("room"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAddComment(c echo.Context) error {
	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Room == "" {
		return apperrors.ValidationError("room is required")
	}

	out := s.svc.InjectComment(req.Room, domain.Comment{
		ID:     req.ID,
		Author: domain.Author{ID: req.AuthorID, Name: req.Name, Avatar: req.Avatar},
		Text:   req.Message,
	})
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleAddReaction(c echo.Context) error {
	var req addReactionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Room == "" {
		return apperrors.ValidationError("room is required")
	}

	out := s.svc.InjectReaction(req.Room, domain.Reaction{
		Author:   domain.Author{ID: req.AuthorID, Name: req.Name},
		Reaction: req.Reaction,
	})
	return c.JSON(http.StatusOK, out)
}
