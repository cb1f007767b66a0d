package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/harborhealth/claims/internal/authcore/store"
)

// HousekeepingService periodically removes sessions whose inactivity
// budget lapsed without a request ever coming back to notice.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 5 minutes.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() for a
// graceful shutdown.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the background worker, blocking until any in-progress
// sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep destroys sessions whose own recorded budget has lapsed. The
// store judges each session individually, so a shrunk config budget never
// retroactively kills sessions minted under a longer one.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	removed, err := s.Store.Sessions().DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to sweep idle sessions", "error", err)
		return
	}
	if removed > 0 {
		s.Logger.Info("swept idle sessions", "removed", removed)
	}
}
