package chord

import (
	"context"
	"sync"
	"time"

	"chordring/internal/logger"
)

// TaskRunnerConfig holds the three independent tick intervals the
// runner schedules (spec §4.6, §6 defaults).
type TaskRunnerConfig struct {
	StabilizeInterval        time.Duration
	PredecessorCheckInterval time.Duration
	FixFingersInterval       time.Duration
}

// DefaultTaskRunnerConfig returns the spec's recommended defaults:
// stabilize and check_predecessor every second, fix_fingers every
// 500ms.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		StabilizeInterval:        time.Second,
		PredecessorCheckInterval: time.Second,
		FixFingersInterval:       500 * time.Millisecond,
	}
}

// TaskRunner periodically drives a NodeService's three maintenance
// methods at independent intervals, serialising overlapping ticks of
// the same task, grounded on the teacher's StartStabilizers
// (internal/node/chord/stabilization.go) which spawns one goroutine per
// ticker against a shared stop channel.
type TaskRunner struct {
	svc *NodeService
	cfg TaskRunnerConfig
	lgr logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTaskRunner builds a runner for svc. It does not start ticking
// until Start is called.
func NewTaskRunner(svc *NodeService, cfg TaskRunnerConfig, lgr logger.Logger) *TaskRunner {
	if lgr == nil {
		lgr = logger.NopLogger{}
	}
	return &TaskRunner{svc: svc, cfg: cfg, lgr: lgr}
}

// Start launches the three maintenance loops. Each loop serialises its
// own invocations: a tick is skipped rather than overlapped if the
// previous round of the same task is still running (spec §4.6).
// Cancelling ctx, or calling Stop, ends all three loops; an in-flight
// RPC is allowed to finish or be abandoned, but the store is never left
// partially updated because every mutation is a single small locked
// region (spec §5).
func (r *TaskRunner) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(3)
	go r.loop(runCtx, "stabilize", r.cfg.StabilizeInterval, func(taskCtx context.Context) {
		if err := r.svc.Stabilize(taskCtx); err != nil {
			r.lgr.Warn("stabilize round failed", logger.F("error", err.Error()))
		}
	})
	go r.loop(runCtx, "fix_fingers", r.cfg.FixFingersInterval, func(taskCtx context.Context) {
		r.svc.FixFingers(taskCtx)
	})
	go r.loop(runCtx, "check_predecessor", r.cfg.PredecessorCheckInterval, func(taskCtx context.Context) {
		r.svc.CheckPredecessor(taskCtx)
	})
}

// Stop cancels all loops and blocks until they have returned.
func (r *TaskRunner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// loop ticks task at interval, serialising invocations: each round runs
// on this goroutine, so rounds never run concurrently. Ticks that fire
// while a round is running are dropped by the ticker, except the single
// tick its channel buffers, which starts the next round as soon as the
// current one returns.
func (r *TaskRunner) loop(ctx context.Context, name string, interval time.Duration, task func(context.Context)) {
	defer r.wg.Done()

	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var running sync.Mutex

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !running.TryLock() {
				r.lgr.Debug("tick skipped, previous round still running", logger.F("task", name))
				continue
			}
			task(ctx)
			running.Unlock()
		}
	}
}
