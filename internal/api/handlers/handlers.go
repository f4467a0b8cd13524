// Package handlers implements the HTTP endpoints: signal classification,
// signature refresh, stats, and tips.
package handlers

import (
	"encoding/json"
	"net/http"

	"parsaban/internal/engine"
	"parsaban/internal/infrastructure/cache"
	"parsaban/internal/infrastructure/database/repository"
	"parsaban/internal/update"
	"parsaban/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health  *HealthHandler
	Scan    *ScanHandler
	Signals *SignalsHandler
	Update  *UpdateHandler
	Stats   *StatsHandler
	Tips    *TipsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Engine     *engine.Engine
	Dispatcher *engine.Dispatcher
	Manager    *update.Manager
	Repos      *repository.Repositories
	Cache      *cache.Redis
	Logger     *logger.Logger
	Version    string
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Cache, deps.Repos, deps.Version, deps.Logger),
		Scan:    NewScanHandler(deps.Engine, deps.Logger),
		Signals: NewSignalsHandler(deps.Dispatcher, deps.Logger),
		Update:  NewUpdateHandler(deps.Manager, deps.Repos, deps.Logger),
		Stats:   NewStatsHandler(deps.Repos, deps.Logger),
		Tips:    NewTipsHandler(deps.Repos, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
