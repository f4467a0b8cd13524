// Package update fetches the remote signature feed and applies it to the
// store. One refresh is in flight at a time; callers observe progress
// through the State snapshot.
package update

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"parsaban/internal/config"
	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/cache"
	"parsaban/internal/infrastructure/database/repository"
	"parsaban/pkg/logger"
)

//go:embed seed.json
var seedPayload []byte

// Status is the refresh lifecycle phase exposed to the API
type Status string

const (
	StatusIdle     Status = "idle"
	StatusUpdating Status = "updating"
	StatusSuccess  Status = "success"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
)

// ErrRefreshTooSoon means the minimum interval since the last refresh has
// not elapsed yet.
var ErrRefreshTooSoon = errors.New("update: refresh attempted before minimum interval elapsed")

// ErrRefreshInProgress means another refresh holds the slot.
var ErrRefreshInProgress = errors.New("update: refresh already in progress")

// State is a point-in-time snapshot of the manager
type State struct {
	Status     Status                 `json:"status"`
	LastUpdate time.Time              `json:"last_update"`
	LastError  string                 `json:"last_error,omitempty"`
	LastCounts repository.ApplyCounts `json:"last_counts"`
	LastType   models.UpdateType      `json:"last_type,omitempty"`
	Sponsor    *models.Sponsor        `json:"sponsor,omitempty"`
}

// Manager drives signature refreshes
type Manager struct {
	cfg    config.UpdateConfig
	repos  *repository.Repositories
	cache  *cache.Redis
	client *http.Client
	log    *logger.Logger

	mu       sync.Mutex
	updating bool
	state    State
}

// NewManager creates a refresh manager. cache may be nil; last-refresh
// bookkeeping then falls back to the update history table alone.
func NewManager(cfg config.UpdateConfig, repos *repository.Repositories, redis *cache.Redis, log *logger.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		repos:  repos,
		cache:  redis,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		log:    log.WithComponent("update"),
		state:  State{Status: StatusIdle},
	}
}

// State returns the current snapshot
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Seed loads the embedded payload into a freshly created store so the
// engine can classify before the first remote refresh succeeds.
func (m *Manager) Seed(ctx context.Context) error {
	var payload models.Payload
	if err := json.Unmarshal(seedPayload, &payload); err != nil {
		return fmt.Errorf("failed to parse embedded seed: %w", err)
	}
	counts, err := m.repos.Rebuild(ctx, &payload)
	if err != nil {
		return fmt.Errorf("failed to apply embedded seed: %w", err)
	}
	m.log.Info().
		Int("links", counts.Links).
		Int("senders", counts.Senders).
		Int("apps", counts.Apps).
		Msg("store seeded from embedded payload")
	return nil
}

// Refresh fetches and applies the remote feed. The data and tips documents
// are hard dependencies; the sponsor document is soft and its failure is
// only logged. Refreshes inside the minimum interval are skipped.
func (m *Manager) Refresh(ctx context.Context, updateType models.UpdateType) (State, error) {
	m.mu.Lock()
	if m.updating {
		m.mu.Unlock()
		return m.State(), ErrRefreshInProgress
	}
	m.updating = true
	m.state.Status = StatusUpdating
	m.mu.Unlock()

	state, err := m.refresh(ctx, updateType)

	m.mu.Lock()
	m.updating = false
	m.state = mergeState(m.state, state)
	state = m.state
	m.mu.Unlock()
	return state, err
}

// mergeState folds a refresh outcome into the prior snapshot. A skip or
// failure must not erase what the last successful refresh recorded, so the
// counts, type, and sponsor carry forward unless the new outcome succeeded.
func mergeState(prev, next State) State {
	if next.Status == StatusSuccess {
		return next
	}
	next.LastCounts = prev.LastCounts
	next.LastType = prev.LastType
	next.Sponsor = prev.Sponsor
	if next.LastUpdate.IsZero() {
		next.LastUpdate = prev.LastUpdate
	}
	return next
}

func (m *Manager) refresh(ctx context.Context, updateType models.UpdateType) (State, error) {
	now := time.Now()

	last := m.lastRefresh(ctx)
	if !last.IsZero() && now.Sub(last) < m.cfg.MinInterval {
		m.log.Info().Time("last", last).Dur("min_interval", m.cfg.MinInterval).Msg("refresh skipped")
		return State{Status: StatusSkipped, LastUpdate: last}, ErrRefreshTooSoon
	}

	var payload models.Payload
	if err := m.fetchJSON(ctx, m.cfg.DataURL, &payload); err != nil {
		err = fmt.Errorf("data fetch failed: %w", err)
		m.log.Error().Err(err).Msg("refresh failed")
		return State{Status: StatusError, LastUpdate: last, LastError: err.Error()}, err
	}

	var tips []string
	if err := m.fetchJSON(ctx, m.cfg.TipsURL, &tips); err != nil {
		err = fmt.Errorf("tips fetch failed: %w", err)
		m.log.Error().Err(err).Msg("refresh failed")
		return State{Status: StatusError, LastUpdate: last, LastError: err.Error()}, err
	}
	payload.Merge(tips)

	var sponsor *models.Sponsor
	if m.cfg.SponsorURL != "" {
		var s models.Sponsor
		if err := m.fetchJSON(ctx, m.cfg.SponsorURL, &s); err != nil {
			m.log.Warn().Err(err).Msg("sponsor fetch failed, continuing")
		} else {
			sponsor = &s
		}
	}

	counts, err := m.repos.Rebuild(ctx, &payload)
	if err != nil {
		err = fmt.Errorf("feed apply failed: %w", err)
		return State{Status: StatusError, LastUpdate: last, LastError: err.Error()}, err
	}

	if err := m.repos.History.Log(ctx, updateType); err != nil {
		m.log.Warn().Err(err).Msg("failed to record update history")
	}
	if m.cache != nil {
		if err := m.cache.SetLastRefresh(ctx, now); err != nil {
			m.log.Warn().Err(err).Msg("failed to record refresh timestamp")
		}
	}

	m.log.Info().
		Int("links", counts.Links).
		Int("senders", counts.Senders).
		Int("messages", counts.Messages).
		Int("apps", counts.Apps).
		Int("tips", counts.Tips).
		Msg("signature refresh applied")

	return State{
		Status:     StatusSuccess,
		LastUpdate: now,
		LastCounts: counts,
		LastType:   updateType,
		Sponsor:    sponsor,
	}, nil
}

// lastRefresh consults redis first and the history table second
func (m *Manager) lastRefresh(ctx context.Context) time.Time {
	if m.cache != nil {
		if at, err := m.cache.LastRefresh(ctx); err == nil && !at.IsZero() {
			return at
		}
	}
	rec, err := m.repos.History.Last(ctx)
	if err != nil || rec == nil {
		return time.Time{}
	}
	return rec.Timestamp
}

func (m *Manager) fetchJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}
