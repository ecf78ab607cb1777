package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
)

// HousekeepingService periodically purges expired passcodes and token pairs
// whose refresh token can no longer be valid.
type HousekeepingService struct {
	Store      store.Store
	Logger     *slog.Logger
	Interval   time.Duration
	RefreshTTL time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, refreshTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:      store,
		Logger:     logger,
		Interval:   interval,
		RefreshTTL: refreshTTL,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background(), time.Now())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background(), time.Now())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Each deletion is independent; a failure in one
// doesn't stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context, now time.Time) {
	now = now.UTC()

	otps, err := s.Store.OTPs().DeleteExpiredOTPs(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired passcodes", "error", err)
	}

	var pairs int64
	if s.RefreshTTL > 0 {
		pairs, err = s.Store.AuthTokens().DeleteAuthTokenPairsBefore(ctx, now.Add(-s.RefreshTTL))
		if err != nil {
			s.Logger.Error("failed to delete stale token pairs", "error", err)
		}
	}

	s.Logger.Info("housekeeping cleanup completed",
		"expired_passcodes", otps,
		"stale_token_pairs", pairs,
	)
}
