package services

import (
	"context"
	"time"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

const usageResetPollInterval = 1 * time.Hour

// UsageResetter is implemented by repository.UserRepo.
type UsageResetter interface {
	ResetLapsedUsage(ctx context.Context, now, nextReset time.Time) (int64, error)
}

// UsageResetScheduler sweeps lapsed monthly usage windows so counters roll over
// for users who have not signed in since the month ended.
type UsageResetScheduler struct {
	users    UsageResetter
	interval time.Duration
	log      *logger.Logger
	stopChan chan struct{}
	done     chan struct{}
}

func NewUsageResetScheduler(users UsageResetter, log *logger.Logger) *UsageResetScheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &UsageResetScheduler{
		users:    users,
		interval: usageResetPollInterval,
		log:      log,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *UsageResetScheduler) Start() {
	if s.users == nil {
		close(s.done)
		return
	}
	go s.loop()
	s.log.Info("usage reset scheduler started", "interval", s.interval)
}

// Stop is safe to call more than once and waits for the loop to exit.
func (s *UsageResetScheduler) Stop() {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	<-s.done
}

func (s *UsageResetScheduler) loop() {
	defer close(s.done)

	// Run on startup as well as by interval.
	s.sweep(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep(context.Background(), time.Now().UTC())
		}
	}
}

func (s *UsageResetScheduler) sweep(ctx context.Context, now time.Time) int64 {
	n, err := s.users.ResetLapsedUsage(ctx, now, models.NextMonthlyReset(now))
	if err != nil {
		s.log.Warn("usage reset sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		s.log.Info("usage counters reset", "users", n)
	}
	return n
}
