// Package main is the entry point for the ganji API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ganji/internal/app"
	"ganji/internal/config"
	"ganji/internal/infrastructure/auth"
	"ganji/internal/infrastructure/cache"
	v1 "ganji/internal/infrastructure/http/v1"
	"ganji/internal/infrastructure/http/v1/handlers"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	log.Infow("starting ganji server", "env", cfg.App.Env, "timezone", cfg.Ledger.Timezone)

	a, err := app.New(ctx, cfg, cfg.App.Name)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	checks := map[string]handlers.Checker{"database": a.Pool}
	if a.RuleCache != nil {
		checks["redis"] = handlers.CheckerFunc(a.CheckRedis)

		invalidator := cache.NewInvalidator(a.Pool.Pool, a.RuleCache)
		invalidator.Start(ctx)
		defer invalidator.Stop()
	}

	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: auth.NewJWTService(cfg.JWT),
		Location:     a.Location,
		Reports:      a.Reports,
		Targets:      a.Targets,
		Commission:   a.Commission,
		HealthChecks: checks,
		Development:  cfg.App.IsDevelopment(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Errorw("server failed", "error", err)
		}
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
