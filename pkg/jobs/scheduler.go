package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs functions on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a scheduler evaluating specs in loc (UTC when nil).
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(cron.WithLocation(loc)), logger: logger}
}

// Add registers fn under a standard five-field cron spec.
func (s *Scheduler) Add(name, spec string, fn func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("scheduled task started", zap.String("task", name))
		if err := fn(context.Background()); err != nil {
			s.logger.Error("scheduled task failed", zap.String("task", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("task scheduled", zap.String("task", name), zap.String("spec", spec))
	return nil
}

// Len reports the number of registered tasks.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start begins running scheduled tasks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running tasks or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
