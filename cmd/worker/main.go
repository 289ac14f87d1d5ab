// Package main is the entry point for the ganji target worker. It periodically
// evaluates active targets and settles periods that have closed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ganji/internal/app"
	"ganji/internal/config"
	appctx "ganji/internal/core/context"
	"ganji/internal/domain/target"
	"ganji/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Infow("starting ganji worker", "interval", cfg.Worker.Interval)

	a, err := app.New(ctx, cfg, cfg.App.Name+"-worker")
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	worker := NewWorker(a.Targets, a.Pool, cfg.Worker.Interval, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Sweeper evaluates every active target once.
type Sweeper interface {
	Sweep(ctx context.Context) (target.SweepResult, error)
}

// StatsLogger logs connection pool statistics.
type StatsLogger interface {
	LogStats(ctx context.Context)
}

// Worker runs a sweep on every tick. Sweeps never overlap.
type Worker struct {
	sweeper  Sweeper
	stats    StatsLogger
	interval time.Duration
	log      *logger.Logger
}

// NewWorker creates a worker.
func NewWorker(sweeper Sweeper, stats StatsLogger, interval time.Duration, log *logger.Logger) *Worker {
	return &Worker{
		sweeper:  sweeper,
		stats:    stats,
		interval: interval,
		log:      log.WithComponent("worker"),
	}
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	start := time.Now()

	res, err := w.sweeper.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		w.log.WithContext(ctx).Errorw("target sweep failed", "error", err)
	}
	if res.Evaluated > 0 || res.Skipped > 0 {
		w.log.WithContext(ctx).Infow("target sweep finished",
			"evaluated", res.Evaluated,
			"completed", res.Completed,
			"failed", res.Failed,
			"skipped", res.Skipped,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if w.stats != nil {
		w.stats.LogStats(ctx)
	}
}
