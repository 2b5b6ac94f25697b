package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Pruner trims a newest-first collection to at most max entries.
type Pruner interface {
	Prune(ctx context.Context, max int) (int, error)
}

// RetentionTarget is one collection kept under a size limit.
type RetentionTarget struct {
	Name   string
	Pruner Pruner
	Limit  int
}

// Scheduler runs the retention job on a cron schedule.
type Scheduler struct {
	schedule cron.Schedule
	targets  []RetentionTarget
	interval time.Duration
	now      func() time.Time
	ticker   *time.Ticker
	done     chan bool

	mu      sync.Mutex
	nextRun time.Time
}

// NewScheduler creates a scheduler for a standard five-field cron expression.
func NewScheduler(expression string, targets ...RetentionTarget) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", expression, err)
	}
	return &Scheduler{
		schedule: schedule,
		targets:  targets,
		interval: time.Minute,
		now:      time.Now,
		done:     make(chan bool),
	}, nil
}

// NewFeedbackAndMessageScheduler wires the retention job to the feedback and
// message stores.
func NewFeedbackAndMessageScheduler(expression string, feedback services.FeedbackServiceProvider, feedbackLimit int, messages services.MessageServiceProvider, messageLimit int) (*Scheduler, error) {
	return NewScheduler(expression,
		RetentionTarget{Name: "feedback", Pruner: feedback, Limit: feedbackLimit},
		RetentionTarget{Name: "messages", Pruner: messages, Limit: messageLimit},
	)
}

// NextRun returns when the job fires next.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

func (s *Scheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	s.nextRun = t
	s.mu.Unlock()
}

// Run starts the scheduler's ticking loop.
func (s *Scheduler) Run() {
	log.Info().Msg("Starting retention scheduler...")
	s.setNextRun(s.schedule.Next(s.now()))
	s.ticker = time.NewTicker(s.interval)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping retention scheduler.")
			return
		case <-s.ticker.C:
			s.tick(context.Background())
		}
	}
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.done <- true
}

// tick runs the job when its time has come and schedules the next run.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	if now.Before(s.NextRun()) {
		return
	}
	s.RunOnce(ctx)
	s.setNextRun(s.schedule.Next(now))
}

// RunOnce prunes every target immediately.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, t := range s.targets {
		if t.Limit <= 0 {
			continue
		}
		dropped, err := t.Pruner.Prune(ctx, t.Limit)
		if err != nil {
			log.Error().Err(err).Str("target", t.Name).Msg("Retention: prune failed")
			continue
		}
		if dropped > 0 {
			log.Info().Str("target", t.Name).Int("dropped", dropped).Int("limit", t.Limit).Msg("Retention: pruned old entries")
		}
	}
}
