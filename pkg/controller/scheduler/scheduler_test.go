package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/autonope/pkg/controller/scheduler"
	"github.com/m-mizutani/autonope/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

type countingUC struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func newCountingUC(err error) *countingUC {
	return &countingUC{calls: make(map[string]int), err: err}
}

func (m *countingUC) RunCycle(_ context.Context, target *model.WatchTarget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[target.Name]++
	return m.err
}

func (m *countingUC) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func TestScheduler_CheckOnStartRunsEachTargetOnce(t *testing.T) {
	uc := newCountingUC(nil)
	targets := []*model.WatchTarget{
		model.NewWatchTarget("a", "a/a", nil, time.Hour),
		model.NewWatchTarget("b", "b/b", nil, time.Hour),
	}

	ctx, cancel := context.WithCancel(context.Background())
	sched := scheduler.New(uc, targets, scheduler.WithCheckOnStart(true))

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	// Wait for the startup cycles, then stop; the hour-long tickers never fire
	deadline := time.After(2 * time.Second)
	for uc.count("a") == 0 || uc.count("b") == 0 {
		select {
		case <-deadline:
			t.Fatal("startup cycles did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done

	gt.Number(t, uc.count("a")).Equal(1)
	gt.Number(t, uc.count("b")).Equal(1)
}

func TestScheduler_TicksAtInterval(t *testing.T) {
	uc := newCountingUC(nil)
	targets := []*model.WatchTarget{
		model.NewWatchTarget("fast", "a/a", nil, 20*time.Millisecond),
	}

	ctx, cancel := context.WithCancel(context.Background())
	sched := scheduler.New(uc, targets, scheduler.WithCheckOnStart(false))

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for uc.count("fast") < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduled cycles did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestScheduler_FailedCycleInvokesHookAndKeepsRunning(t *testing.T) {
	uc := newCountingUC(context.DeadlineExceeded)
	targets := []*model.WatchTarget{
		model.NewWatchTarget("flaky", "a/a", nil, 20*time.Millisecond),
	}

	var mu sync.Mutex
	var hooked int

	ctx, cancel := context.WithCancel(context.Background())
	sched := scheduler.New(uc, targets,
		scheduler.WithCheckOnStart(true),
		scheduler.WithErrorHook(func(error) {
			mu.Lock()
			hooked++
			mu.Unlock()
		}),
	)

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for uc.count("flaky") < 2 {
		select {
		case <-deadline:
			t.Fatal("failed cycles stopped the loop")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	gt.Number(t, hooked).Greater(1)
}
