package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beleads_backend/internal/events"
	pipelinerepo "beleads_backend/internal/pipeline/repository"
	pipelinesvc "beleads_backend/internal/pipeline/service"
	"beleads_backend/internal/scheduler"
	"beleads_backend/platform/config"
	"beleads_backend/platform/db"
	"beleads_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	// Worker-side pipeline wiring (no HTTP handlers required). The sweeper
	// writes directly and never needs the reconciliation queue.
	pipelineService := pipelinesvc.New(pipelinerepo.New(pool), nil, eventBus, cfg.GetRecycleCooldown(), log)

	sweeper := scheduler.NewRecycleSweeper(pipelineService, log, cfg.GetRecycleSweepInterval(), cfg.GetRecycleSweepBatch())

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; running the recycle sweep only")
		sweeper.Run(ctx)
		return
	}

	go sweeper.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, pipelineService, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
