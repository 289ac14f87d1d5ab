package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ganji/internal/domain/commission"
	"ganji/pkg/logger"
)

// RulesChangedChannel is the NOTIFY channel raised by the commission_rules trigger.
const RulesChangedChannel = "commission_rules_changed"

// Invalidator drops the cached rule set whenever PostgreSQL reports a rule change,
// so edits made outside this service are seen before the TTL expires.
type Invalidator struct {
	pool  *pgxpool.Pool
	cache commission.Cache

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewInvalidator creates an invalidator for cache.
func NewInvalidator(pool *pgxpool.Pool, cache commission.Cache) *Invalidator {
	return &Invalidator{pool: pool, cache: cache}
}

// Start begins listening in the background. Calling Start twice is a no-op.
func (i *Invalidator) Start(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.started {
		return
	}

	ctx, i.cancel = context.WithCancel(ctx)
	i.started = true
	i.wg.Add(1)
	go i.listenLoop(ctx)
	logger.Info(ctx, "commission rule invalidator started")
}

// Stop ends listening and waits for the loop to exit.
func (i *Invalidator) Stop() {
	i.mu.Lock()
	if !i.started {
		i.mu.Unlock()
		return
	}
	cancel := i.cancel
	i.started = false
	i.cancel = nil
	i.mu.Unlock()

	cancel()
	i.wg.Wait()
}

func (i *Invalidator) listenLoop(ctx context.Context) {
	defer i.wg.Done()

	for ctx.Err() == nil {
		conn, err := i.pool.Acquire(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error(ctx, "failed to acquire connection for LISTEN", "error", err)
				sleep(ctx, time.Second)
			}
			continue
		}

		if _, err := conn.Exec(ctx, "LISTEN "+RulesChangedChannel); err != nil {
			logger.Error(ctx, "failed to LISTEN", "channel", RulesChangedChannel, "error", err)
			release(conn)
			sleep(ctx, time.Second)
			continue
		}

		// Rules may have changed while no listener was attached.
		i.invalidate(ctx, "listen")
		i.wait(ctx, conn)
		release(conn)
	}
}

// release returns conn to the pool without its subscription. A connection that
// cannot be reset is closed instead.
func release(conn *pgxpool.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := conn.Exec(ctx, "UNLISTEN *"); err != nil {
		_ = conn.Conn().Close(ctx)
	}
	conn.Release()
}

func (i *Invalidator) wait(ctx context.Context, conn *pgxpool.Conn) {
	for ctx.Err() == nil {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn(ctx, "LISTEN connection lost", "error", err)
			}
			return
		}
		i.invalidate(ctx, n.Payload)
	}
}

func (i *Invalidator) invalidate(ctx context.Context, reason string) {
	if err := i.cache.Invalidate(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate commission rule cache", "reason", reason, "error", err)
		return
	}
	logger.Debug(ctx, "commission rule cache invalidated", "reason", reason)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
