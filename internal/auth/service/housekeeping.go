package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/misenoti/misenoti/internal/auth/metrics"
	"github.com/misenoti/misenoti/internal/auth/store"
)

// HousekeepingService periodically deletes expired password resets and
// verification attempts. Expired rows are already rejected at read time, so
// this only bounds table growth.
type HousekeepingService struct {
	Resets        store.PasswordResets
	Verifications store.Verifications
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	Interval      time.Duration
	Now           func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service sweeping the resets
// and verifications of s. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(s store.Store, verifications store.Verifications, m *metrics.Metrics, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if verifications == nil {
		verifications = s.Verifications()
	}

	return &HousekeepingService{
		Resets:        s.PasswordResets(),
		Verifications: verifications,
		Metrics:       m,
		Logger:        logger,
		Interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one cleanup pass. Each deletion is independent; a failure in
// one does not stop the other.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var total int64

	if n, err := s.Resets.DeleteExpiredPasswordResets(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired password resets", "error", err)
	} else {
		s.Metrics.ObserveSwept("password_reset", n)
		total += n
	}

	if n, err := s.Verifications.DeleteExpiredVerifications(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired verification attempts", "error", err)
	} else {
		s.Metrics.ObserveSwept("verification", n)
		total += n
	}

	s.Logger.Info("housekeeping sweep completed", "deleted", total)
}
