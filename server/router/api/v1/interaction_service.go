package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uwnexus/watsnew/internal/observability"
)

// InteractionRequest is the body of POST /api/v1/interactions.
type InteractionRequest struct {
	UserID string `json:"user_id"`
	Link   string `json:"link"`
	Action string `json:"action"`
}

// InteractionResponse acknowledges a recorded interaction with the user's
// updated ledger totals.
type InteractionResponse struct {
	Success    bool   `json:"success"`
	UserID     string `json:"user_id"`
	Action     string `json:"action"`
	TotalSeen  int    `json:"total_seen"`
	TotalLiked int    `json:"total_liked"`
}

// UserStatsResponse is the body of GET /api/v1/users/:id/stats.
type UserStatsResponse struct {
	UserID     string `json:"user_id"`
	TotalSeen  int    `json:"total_seen"`
	TotalLiked int    `json:"total_liked"`
}

// UserStats reports a user's ledger set sizes. The seen set only grows, so
// this is the observable for watching its size on long-lived processes. An
// unknown user reports zeros.
func (s *APIV1Service) UserStats(c echo.Context) error {
	userID := c.Param("id")
	stats := s.Ledger.Stats(c.Request().Context(), userID)
	return c.JSON(http.StatusOK, UserStatsResponse{
		UserID:     userID,
		TotalSeen:  stats.TotalSeen,
		TotalLiked: stats.TotalLiked,
	})
}

// RecordInteraction marks a link seen (and liked for "like") for a user.
func (s *APIV1Service) RecordInteraction(c echo.Context) error {
	var req InteractionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if reqCtx, ok := observability.FromContext(c.Request().Context()); ok {
		reqCtx.UserID = req.UserID
	}

	action, stats, err := s.Recommender.RecordInteraction(c.Request().Context(), req.UserID, req.Link, req.Action)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, InteractionResponse{
		Success:    true,
		UserID:     req.UserID,
		Action:     string(action),
		TotalSeen:  stats.TotalSeen,
		TotalLiked: stats.TotalLiked,
	})
}
