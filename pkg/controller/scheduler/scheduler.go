package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/autonope/pkg/domain/model"
	"github.com/m-mizutani/autonope/pkg/utils/async"
	"github.com/m-mizutani/ctxlog"
)

// Scheduler drives check cycles: one goroutine per target, ticking at the
// target's interval. A target's cycles run strictly sequentially within
// its goroutine, so at most one cycle per repository identity is in
// flight, which the watermark store relies on.
type Scheduler struct {
	checkUC      interfaces.CheckUseCase
	targets      []*model.WatchTarget
	checkOnStart bool
	onError      func(error)
}

// Option customizes the scheduler
type Option func(*Scheduler)

// WithCheckOnStart runs one cycle per target immediately when Run starts
func WithCheckOnStart(enabled bool) Option {
	return func(s *Scheduler) {
		s.checkOnStart = enabled
	}
}

// WithErrorHook registers a callback invoked with every failed cycle's
// error, e.g. for Sentry reporting. Logging happens regardless.
func WithErrorHook(hook func(error)) Option {
	return func(s *Scheduler) {
		s.onError = hook
	}
}

// New creates a scheduler for the given targets
func New(checkUC interfaces.CheckUseCase, targets []*model.WatchTarget, opts ...Option) *Scheduler {
	s := &Scheduler{
		checkUC: checkUC,
		targets: targets,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts all target loops and blocks until the context is cancelled
// and every loop has drained
func (s *Scheduler) Run(ctx context.Context) {
	logger := ctxlog.From(ctx)

	var wg sync.WaitGroup
	for _, target := range s.targets {
		wg.Add(1)

		logger.Info("Scheduling target",
			"target", target.Name,
			"ref", target.Ref,
			"interval", target.Interval.String(),
		)

		async.Go(ctx, "watch:"+target.Name, func(ctx context.Context) error {
			defer wg.Done()
			s.watchLoop(ctx, target)
			return nil
		})
	}

	wg.Wait()
}

// watchLoop runs cycles for one target until the context ends. A failed
// cycle is logged and retried at the next tick; it never stops the loop or
// affects other targets.
func (s *Scheduler) watchLoop(ctx context.Context, target *model.WatchTarget) {
	if s.checkOnStart {
		s.runOnce(ctx, target)
	}

	ticker := time.NewTicker(target.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, target)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, target *model.WatchTarget) {
	start := time.Now()

	if err := s.checkUC.RunCycle(ctx, target); err != nil {
		ctxlog.From(ctx).Error("Check cycle failed",
			"target", target.Name,
			"repo", target.Repo,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	ctxlog.From(ctx).Debug("Check cycle completed",
		"target", target.Name,
		"repo", target.Repo,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
