// Package app wires configuration, storage and domain services for the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ganji/internal/config"
	"ganji/internal/domain/aggregate"
	"ganji/internal/domain/commission"
	"ganji/internal/domain/reports"
	"ganji/internal/domain/target"
	"ganji/internal/infrastructure/cache"
	"ganji/internal/infrastructure/storage/postgres"
	"ganji/internal/infrastructure/storage/postgres/commission_repo"
	"ganji/internal/infrastructure/storage/postgres/ledger_repo"
	"ganji/internal/infrastructure/storage/postgres/target_repo"
	"ganji/pkg/logger"
)

// App holds the shared dependencies of the server and the worker.
type App struct {
	Config   *config.Config
	Location *time.Location
	Pool     *postgres.Pool
	TxM      *postgres.TxManager

	// Redis and RuleCache are nil when the cache is disabled.
	Redis     *redis.Client
	RuleCache *cache.RuleCache

	Reports    *reports.Service
	Targets    *target.Service
	Commission *commission.Service
}

// New connects to storage and builds the domain services. appName is reported to
// PostgreSQL as application_name.
func New(ctx context.Context, cfg *config.Config, appName string) (*App, error) {
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfigFrom(cfg.Database, appName))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info(ctx, "database connection established", "max_conns", cfg.Database.MaxConns)

	a := &App{Config: cfg, Location: loc, Pool: pool, TxM: postgres.NewTxManager(pool)}

	var ruleCache commission.Cache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, err
		}
		rc, err := cache.NewRuleCache(client, cfg.Redis.RuleTTL)
		if err != nil {
			_ = client.Close()
			pool.Close()
			return nil, err
		}
		a.Redis, a.RuleCache = client, rc
		ruleCache = rc
		logger.Info(ctx, "commission rule cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.RuleTTL)
	}

	ruleRepo := commission_repo.NewRuleRepo(a.TxM)
	a.Commission = commission.NewService(ruleRepo, ruleCache)
	a.Reports = reports.NewService(
		ledger_repo.NewSaleRepo(a.TxM, loc),
		ledger_repo.NewServiceRepo(a.TxM, loc),
		ruleRepo,
		a.TxM,
		aggregate.New(loc),
		reports.Options{SkipInvalidRecords: cfg.Ledger.SkipInvalidRecords},
	)
	a.Targets = target.NewService(target_repo.NewTargetRepo(a.TxM), a.Reports, loc)

	return a, nil
}

// CheckRedis implements the readiness probe for the rule cache.
func (a *App) CheckRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.Redis.Ping(ctx).Err()
}

// Close releases connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.Pool.Close()
}
