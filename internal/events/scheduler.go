package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// Scheduler runs the periodic jobs that push time-based events, currently
// the midnight rollover that moves every open month view's "today" row.
type Scheduler struct {
	cron        *cron.Cron
	broadcaster *Broadcaster
	loc         *time.Location
	now         func() time.Time
}

// NewScheduler creates a scheduler whose jobs fire in loc.
func NewScheduler(b *Broadcaster, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		broadcaster: b,
		loc:         loc,
		now:         time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("0 0 * * *", s.RollOver); err != nil {
		return fmt.Errorf("events.Scheduler.Start: add rollover job: %w", err)
	}
	s.cron.Start()
	slog.InfoContext(ctx, "scheduler started", "timezone", s.loc.String())
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RollOver broadcasts the new calendar day.
func (s *Scheduler) RollOver() {
	today := s.now().In(s.loc).Format(domain.DateLayout)
	if err := s.broadcaster.DayChanged(today, s.loc.String()); err != nil {
		slog.Error("day rollover broadcast failed", "error", err)
		return
	}
	slog.Info("day rolled over", "date", today)
}
