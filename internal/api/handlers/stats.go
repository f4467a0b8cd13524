package handlers

import (
	"net/http"

	"parsaban/internal/infrastructure/database/repository"
	"parsaban/pkg/logger"
)

// StatsHandler exposes user-facing counters
type StatsHandler struct {
	repos  *repository.Repositories
	logger *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(repos *repository.Repositories, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		repos:  repos,
		logger: log.WithComponent("stats-handler"),
	}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repos.Stats.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read stats")
		respondError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
