package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appctx "ganji/internal/core/context"
	"ganji/internal/domain/target"
	"ganji/pkg/logger"
)

type countingSweeper struct {
	calls  atomic.Int32
	traced atomic.Bool
}

func (s *countingSweeper) Sweep(ctx context.Context) (target.SweepResult, error) {
	s.calls.Add(1)
	if appctx.GetTrace(ctx) != nil {
		s.traced.Store(true)
	}
	return target.SweepResult{Evaluated: 1}, nil
}

type countingStats struct{ calls atomic.Int32 }

func (s *countingStats) LogStats(context.Context) { s.calls.Add(1) }

func TestWorker_SweepsUntilCancelled(t *testing.T) {
	sweeper := &countingSweeper{}
	stats := &countingStats{}
	w := NewWorker(sweeper, stats, 10*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, sweeper.traced.Load(), "each sweep runs with a trace context")
	assert.Equal(t, sweeper.calls.Load(), stats.calls.Load())
}
