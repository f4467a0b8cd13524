package handlers

import (
	"net/http"

	"parsaban/internal/infrastructure/database/repository"
	"parsaban/pkg/logger"
)

// TipsHandler serves the security tip pool
type TipsHandler struct {
	repos  *repository.Repositories
	logger *logger.Logger
}

// NewTipsHandler creates a new tips handler
func NewTipsHandler(repos *repository.Repositories, log *logger.Logger) *TipsHandler {
	return &TipsHandler{
		repos:  repos,
		logger: log.WithComponent("tips-handler"),
	}
}

// Random handles GET /api/v1/tips/random
func (h *TipsHandler) Random(w http.ResponseWriter, r *http.Request) {
	tip, err := h.repos.Tips.Random(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to pick tip")
		respondError(w, http.StatusInternalServerError, "failed to pick tip")
		return
	}
	if tip == "" {
		respondError(w, http.StatusNotFound, "no tips available")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"tip": tip})
}

// List handles GET /api/v1/tips
func (h *TipsHandler) List(w http.ResponseWriter, r *http.Request) {
	tips, err := h.repos.Tips.All(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list tips")
		respondError(w, http.StatusInternalServerError, "failed to list tips")
		return
	}
	if tips == nil {
		tips = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"tips": tips})
}
