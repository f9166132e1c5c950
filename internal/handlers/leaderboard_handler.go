package handlers

import (
	"net/http"
	"strconv"

	"soundsteps/internal/leaderboard"
	"soundsteps/internal/models"
)

// LeaderboardHandler handles leaderboard endpoints
type LeaderboardHandler struct {
	board *leaderboard.Board
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(board *leaderboard.Board) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// GetLeaderboard handles GET /api/leaderboard.
// Query params: limit (default 10), filter (all|registered|guests),
// sort (totalScore|mastery|activities|achievements). Filter and sort
// combine: the restricted view is re-ranked before the limit applies.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = n
	}

	filter := r.URL.Query().Get("filter")
	sortBy := r.URL.Query().Get("sort")

	var entries []models.LeaderboardEntry
	if filter != "" && filter != leaderboard.FilterAll {
		entries = h.board.Filtered(filter)
	} else {
		entries = h.board.Top(leaderboard.MaxEntries)
	}
	if sortBy != "" && sortBy != leaderboard.SortByScore {
		leaderboard.SortEntries(entries, sortBy)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
	})
}

// GetRank handles GET /api/leaderboard/rank for the authenticated user
func (h *LeaderboardHandler) GetRank(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rank":  h.board.UserRank(user.ID),
		"entry": h.board.UserEntry(user.ID),
	})
}
