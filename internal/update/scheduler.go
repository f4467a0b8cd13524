package update

import (
	"context"
	"time"

	"parsaban/internal/domain/models"
	"parsaban/pkg/logger"
)

// Scheduler triggers automatic refreshes on a fixed interval. The manager's
// own minimum-interval check still applies, so a tight schedule degrades to
// skipped refreshes instead of extra fetches.
type Scheduler struct {
	manager *Manager
	every   time.Duration
	log     *logger.Logger
	stop    chan struct{}
	done    chan struct{}
}

// NewScheduler creates a scheduler; Start launches it
func NewScheduler(m *Manager, every time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		manager: m,
		every:   every,
		log:     log.WithComponent("scheduler"),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start runs the refresh loop in a goroutine until ctx ends or Stop is
// called
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()

		s.log.Info().Dur("every", s.every).Msg("refresh scheduler started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				if _, err := s.manager.Refresh(ctx, models.UpdateAuto); err != nil {
					s.log.Warn().Err(err).Msg("scheduled refresh did not apply")
				}
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}
