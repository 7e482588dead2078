package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Schedule describes a recurring run.
type Schedule struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Every   time.Duration `json:"every" yaml:"every"`
	LastRun time.Time     `json:"last_run,omitempty" yaml:"last_run,omitempty"`
}

// Due reports whether a run should start at now.
func (s Schedule) Due(now time.Time) bool {
	if !s.Enabled || s.Every <= 0 {
		return false
	}
	return s.LastRun.IsZero() || now.Sub(s.LastRun) >= s.Every
}

// Scheduler polls its Schedule every Tick and invokes Run when due.
type Scheduler struct {
	Schedule Schedule
	Tick     time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	Run func(ctx context.Context) (*Record, error)
	// OnRecord is called after each successful run.
	OnRecord func(Record)
	History  *History
	Logger   *zap.Logger
}

// Start blocks, checking the schedule immediately and then on every tick, until ctx is done.
// A failed run is logged and retried at the next interval.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.Run == nil {
		return errors.New("scheduler has no run function")
	}
	if s.Tick <= 0 {
		return errors.New("scheduler tick must be positive")
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	s.Logger.Info("scheduler started",
		zap.Bool("enabled", s.Schedule.Enabled),
		zap.Duration("every", s.Schedule.Every),
		zap.Duration("tick", s.Tick))

	s.poll(ctx)

	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	now := s.Now()
	if !s.Schedule.Due(now) || ctx.Err() != nil {
		return
	}
	s.Schedule.LastRun = now
	rec, err := s.Run(ctx)
	if err != nil {
		s.Logger.Error("scheduled run failed", zap.Error(err))
		return
	}
	if rec == nil {
		return
	}
	if s.History != nil {
		s.History.Add(*rec)
	}
	s.Logger.Info("scheduled run finished",
		zap.String("id", rec.ID),
		zap.String("file", rec.Filename),
		zap.Int("score_before", rec.ScoreBefore),
		zap.Int("score_after", rec.ScoreAfter),
		zap.Int("diffs", rec.DiffCount))
	if s.OnRecord != nil {
		s.OnRecord(*rec)
	}
}
