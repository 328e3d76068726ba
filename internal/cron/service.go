package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delish-app/tiffin-backend/pkg/logger"
)

const defaultInterval = 15 * time.Minute

// JobObserver records job outcomes. *metrics.Metrics satisfies it.
type JobObserver interface {
	ObserveJob(job string, elapsed time.Duration, err error)
}

type ServiceParams struct {
	Logger   *logger.Logger
	Lock     Lock
	Jobs     []Job
	Metrics  JobObserver
	Interval time.Duration
	// CycleTimeout bounds one cycle; keep it below the lock lease.
	CycleTimeout time.Duration
}

// Service runs every job once per interval while holding the worker lock.
// A failing job is logged and does not stop the jobs after it.
type Service struct {
	logg         *logger.Logger
	lock         Lock
	jobs         []Job
	metrics      JobObserver
	interval     time.Duration
	cycleTimeout time.Duration
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Logger == nil {
		return nil, errors.New("cron: logger is required")
	}
	if p.Lock == nil {
		return nil, errors.New("cron: lock is required")
	}
	if err := checkJobs(p.Jobs); err != nil {
		return nil, fmt.Errorf("cron: %w", err)
	}
	if p.Interval <= 0 {
		p.Interval = defaultInterval
	}
	return &Service{
		logg:         p.Logger,
		lock:         p.Lock,
		jobs:         append([]Job(nil), p.Jobs...),
		metrics:      p.Metrics,
		interval:     p.Interval,
		cycleTimeout: p.CycleTimeout,
	}, nil
}

// Run executes a cycle immediately and then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logg.Error(ctx, "cron cycle failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce executes one cycle. It returns nil when another replica holds the
// lock; job failures are reported through logs and metrics only.
func (s *Service) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !held {
		s.logg.Info(ctx, "cron lock held elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		// release even when ctx was canceled mid-cycle
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "cron lock release failed", err)
		}
	}()

	cycleCtx := ctx
	if s.cycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, s.cycleTimeout)
		defer cancel()
	}

	started := time.Now()
	failed := 0
	for _, job := range s.jobs {
		if cycleCtx.Err() != nil {
			break
		}
		if !s.runJob(cycleCtx, job) {
			failed++
		}
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"jobs":        len(s.jobs),
		"failed":      failed,
		"duration_ms": time.Since(started).Milliseconds(),
	}), "cron cycle finished")
	return nil
}

func (s *Service) runJob(ctx context.Context, job Job) bool {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	started := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(started)
	if s.metrics != nil {
		s.metrics.ObserveJob(job.Name(), elapsed, err)
	}

	ctx = s.logg.WithField(ctx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "cron job failed", err)
		return false
	}
	s.logg.Debug(ctx, "cron job done")
	return true
}
