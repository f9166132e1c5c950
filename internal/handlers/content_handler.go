package handlers

import (
	"net/http"

	"soundsteps/internal/catalog"
	"soundsteps/internal/content"
	"soundsteps/internal/models"
	"soundsteps/internal/progress"
)

// ContentHandler serves the static learning content and badge catalog
type ContentHandler struct {
	cat *catalog.Catalog
}

// NewContentHandler creates a new content handler
func NewContentHandler(cat *catalog.Catalog) *ContentHandler {
	return &ContentHandler{cat: cat}
}

// GetLetters handles GET /api/flashcards/letters
func (h *ContentHandler) GetLetters(w http.ResponseWriter, r *http.Request) {
	letters := content.Letters()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"letters": letters,
		"total":   len(letters),
	})
}

// GetBlendWords handles GET /api/blending/words
func (h *ContentHandler) GetBlendWords(w http.ResponseWriter, r *http.Request) {
	words := content.BlendWords()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"words": words,
		"total": len(words),
	})
}

// GetMinimalPairs handles GET /api/minimal-pairs
func (h *ContentHandler) GetMinimalPairs(w http.ResponseWriter, r *http.Request) {
	categories := content.PairCategories()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"total":      len(categories),
	})
}

// GetAchievements handles GET /api/achievements: the activity badge table
// plus the per-module completion badges from the reward catalog
func (h *ContentHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	defs := progress.Definitions()
	for _, module := range models.KnownModules() {
		reward := h.cat.Reward(module)
		defs = append(defs, progress.AchievementDefinition{
			ID:          reward.Achievement.ID,
			Icon:        reward.Achievement.Icon,
			Name:        reward.Achievement.Name,
			Description: reward.Achievement.Description,
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": defs,
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
