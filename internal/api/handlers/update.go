package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/database/repository"
	"parsaban/internal/update"
	"parsaban/pkg/logger"
)

// UpdateHandler exposes the signature refresh lifecycle
type UpdateHandler struct {
	manager *update.Manager
	repos   *repository.Repositories
	logger  *logger.Logger
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(m *update.Manager, repos *repository.Repositories, log *logger.Logger) *UpdateHandler {
	return &UpdateHandler{
		manager: m,
		repos:   repos,
		logger:  log.WithComponent("update-handler"),
	}
}

// Trigger handles POST /api/v1/update - a manual refresh
func (h *UpdateHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	state, err := h.manager.Refresh(r.Context(), models.UpdateManual)
	switch {
	case errors.Is(err, update.ErrRefreshInProgress):
		respondJSON(w, http.StatusConflict, state)
	case errors.Is(err, update.ErrRefreshTooSoon):
		respondJSON(w, http.StatusOK, state)
	case err != nil:
		respondJSON(w, http.StatusBadGateway, state)
	default:
		respondJSON(w, http.StatusOK, state)
	}
}

// State handles GET /api/v1/update/state
func (h *UpdateHandler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.State())
}

// History handles GET /api/v1/update/history
func (h *UpdateHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	records, err := h.repos.History.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read update history")
		respondError(w, http.StatusInternalServerError, "failed to read update history")
		return
	}
	if records == nil {
		records = []models.UpdateRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}
