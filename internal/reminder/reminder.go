// Package reminder periodically finds due reviews and hands them to a Notifier.
package reminder

import (
	"context"
	"fmt"
	"time"

	"feynman_tutor/src/logger"
	"feynman_tutor/src/model"

	"github.com/go-co-op/gocron"
)

// Source is the read side of the memory service used by the sweep
type Source interface {
	Learners(ctx context.Context) ([]string, error)
	DueReviews(ctx context.Context, learnerID string, now time.Time) ([]model.ScheduleEntry, error)
}

// Notifier delivers the due reviews of one learner
type Notifier interface {
	NotifyDue(ctx context.Context, learnerID string, entries []model.ScheduleEntry) error
}

// LogNotifier writes one log line per learner with due reviews
type LogNotifier struct{}

func (LogNotifier) NotifyDue(_ context.Context, learnerID string, entries []model.ScheduleEntry) error {
	concepts := make([]string, 0, len(entries))
	for _, e := range entries {
		concepts = append(concepts, e.Concept)
	}
	logger.Info().
		Str("learner", learnerID).
		Int("due", len(entries)).
		Strs("concepts", concepts).
		Msg("reviews due")
	return nil
}

// Scheduler runs the due-review sweep on a fixed interval
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	notifier  Notifier
	interval  time.Duration
	now       func() time.Time
}

func New(source Source, notifier Notifier, interval time.Duration) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		notifier:  notifier,
		interval:  interval,
		now:       time.Now,
	}
}

// Start schedules the sweep and returns without blocking
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.run); err != nil {
		return fmt.Errorf("failed to schedule review reminders: %w", err)
	}
	s.scheduler.StartAsync()
	logger.Info().Dur("interval", s.interval).Msg("review reminders started")
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		logger.Error().Err(err).Msg("review reminder sweep failed")
	}
}

// Sweep notifies every learner with due reviews and returns how many were
// notified. A failure for one learner is logged and the sweep moves on.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	learners, err := s.source.Learners(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	notified := 0
	for _, learner := range learners {
		if err := ctx.Err(); err != nil {
			return notified, err
		}

		due, err := s.source.DueReviews(ctx, learner, now)
		if err != nil {
			logger.Warn().Err(err).Str("learner", learner).Msg("failed to load due reviews")
			continue
		}
		if len(due) == 0 {
			continue
		}
		if err := s.notifier.NotifyDue(ctx, learner, due); err != nil {
			logger.Warn().Err(err).Str("learner", learner).Msg("failed to send review reminder")
			continue
		}
		notified++
	}

	logger.Debug().Int("learners", len(learners)).Int("notified", notified).Msg("review reminder sweep done")
	return notified, nil
}
