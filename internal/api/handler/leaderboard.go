package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tileduel/tileduel/internal/api/apierr"
	"github.com/tileduel/tileduel/internal/api/middleware"
	"github.com/tileduel/tileduel/internal/api/request"
	"github.com/tileduel/tileduel/internal/api/response"
	"github.com/tileduel/tileduel/internal/services/leaderboard"
)

// LeaderboardHandler handles result submission and leaderboard queries
type LeaderboardHandler struct {
	leaderboard *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(svc *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: svc,
	}
}

// SubmitResult handles POST /api/v1/results
func (h *LeaderboardHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Score == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("score is required"))
		return
	}

	result, err := h.leaderboard.SubmitResult(r.Context(), player.ID, *req.Score, req.MaxTile, req.Moves, req.Won)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ResultFromModel(result))
}

// GetLeaderboard handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromEntries(entries))
}

// GetMyBest handles GET /api/v1/players/me/best
func (h *LeaderboardHandler) GetMyBest(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	best, err := h.leaderboard.BestForPlayer(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResultFromModel(best))
}
