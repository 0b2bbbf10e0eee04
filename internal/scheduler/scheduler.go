package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BookingExpirer lapses pending bookings whose start date has passed.
type BookingExpirer interface {
	ExpireStaleBookings(ctx context.Context) (int, error)
}

// jobTimeout bounds a single run so a stuck database cannot pile up overlapping runs.
const jobTimeout = 5 * time.Minute

// Scheduler manages the service's cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	bookings BookingExpirer
	logger   *zap.Logger
}

// New creates a scheduler running in UTC with seconds precision and registers the
// booking expiry job on the given schedule.
func New(bookings BookingExpirer, expirySchedule string, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{cron: c, bookings: bookings, logger: logger}
	if _, err := c.AddFunc(expirySchedule, s.ExpireStaleBookings); err != nil {
		return nil, fmt.Errorf("failed to register booking expiry job: %w", err)
	}
	return s, nil
}

// ExpireStaleBookings runs one expiry pass.
func (s *Scheduler) ExpireStaleBookings() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	count, err := s.bookings.ExpireStaleBookings(ctx)
	if err != nil {
		s.logger.Error("booking expiry job failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("booking expiry job finished", zap.Int("expired", count))
	}
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting cron scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron scheduler stopped")
}
