package handlers

import (
	"errors"
	"net/http"

	"soundsteps/internal/leaderboard"
	"soundsteps/internal/models"
	"soundsteps/internal/progress"
)

// ProgressHandler handles progress and activity endpoints
type ProgressHandler struct {
	progressService *progress.Service
	board           *leaderboard.Board
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *progress.Service, board *leaderboard.Board) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		board:           board,
	}
}

// requireOwner checks the path user against the authenticated user
func requireOwner(w http.ResponseWriter, r *http.Request) *models.User {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return nil
	}
	if userID := r.PathValue("userId"); userID != "" && userID != user.ID {
		respondWithError(w, http.StatusForbidden, "Cannot access another user's progress", "", nil)
		return nil
	}
	return user
}

// publishToLeaderboard pushes the user's current summary onto the board
func (h *ProgressHandler) publishToLeaderboard(user *models.User) {
	h.board.Upsert(h.progressService.LeaderboardEntry(user.ID, user.Username, user.IsGuest))
}

// GetProgress handles GET /api/progress/{userId}
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	user := requireOwner(w, r)
	if user == nil {
		return
	}
	respondWithJSON(w, http.StatusOK, h.progressService.Progress(user.ID))
}

// SaveProgress handles POST /api/progress/{userId}: the session + per-letter
// mastery write path used by the practice games
func (h *ProgressHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	user := requireOwner(w, r)
	if user == nil {
		return
	}

	var req struct {
		Game    string             `json:"game"`
		Score   int                `json:"score"`
		Total   int                `json:"total"`
		Mastery map[string]float64 `json:"mastery"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	p := h.progressService.ApplyMasteryDelta(user.ID, req.Game, req.Score, req.Total, req.Mastery)
	h.publishToLeaderboard(user)

	respondWithJSON(w, http.StatusOK, p)
}

// RecordActivity handles POST /api/progress/activity
func (h *ProgressHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	user := requireOwner(w, r)
	if user == nil {
		return
	}

	var req struct {
		Module   string `json:"module"`
		Activity string `json:"activity"`
		Correct  bool   `json:"correct"`
		Points   int    `json:"points"`
		Letter   string `json:"letter"`
		Category string `json:"pairCategory"`
		Score    int    `json:"score"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	result := models.ActivityResult{
		Correct:      req.Correct,
		Points:       req.Points,
		Letter:       req.Letter,
		PairCategory: req.Category,
		Score:        req.Score,
	}
	if err := h.progressService.RecordActivity(user.ID, req.Module, req.Activity, result); err != nil {
		if errors.Is(err, progress.ErrUnknownModule) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to record activity", "Activity update failed", err)
		return
	}

	h.publishToLeaderboard(user)
	respondWithJSON(w, http.StatusOK, h.progressService.Progress(user.ID))
}

// CompleteModule handles POST /api/progress/complete/{module}
func (h *ProgressHandler) CompleteModule(w http.ResponseWriter, r *http.Request) {
	user := requireOwner(w, r)
	if user == nil {
		return
	}

	module := r.PathValue("module")
	result, err := h.progressService.CompleteModule(user.ID, module)
	if err != nil {
		if errors.Is(err, progress.ErrUnknownModule) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to complete module", "Module completion failed", err)
		return
	}

	h.publishToLeaderboard(user)
	respondWithJSON(w, http.StatusOK, result)
}

// GetStats handles GET /api/progress/stats
func (h *ProgressHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user := requireOwner(w, r)
	if user == nil {
		return
	}

	stats := h.progressService.OverallStats(user.ID)
	respondWithJSON(w, http.StatusOK, struct {
		models.OverallStats
		LevelProgress int `json:"levelProgress"`
	}{
		OverallStats:  stats,
		LevelProgress: h.progressService.LevelProgress(user.ID),
	})
}

// ResetProgress handles DELETE /api/progress/{userId}
func (h *ProgressHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	user := requireOwner(w, r)
	if user == nil {
		return
	}

	if err := h.progressService.Reset(user.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to reset progress", "Progress reset failed", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Progress reset"})
}
