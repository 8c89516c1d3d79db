package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beleads_backend/internal/acquisition"
	"beleads_backend/internal/acquisition/directory"
	acquisitionrepo "beleads_backend/internal/acquisition/repository"
	"beleads_backend/internal/adapters"
	"beleads_backend/internal/catalog"
	catalogsvc "beleads_backend/internal/catalog/service"
	"beleads_backend/internal/events"
	apphttp "beleads_backend/internal/http"
	"beleads_backend/internal/http/router"
	"beleads_backend/internal/pipeline"
	pipelinerepo "beleads_backend/internal/pipeline/repository"
	pipelinesvc "beleads_backend/internal/pipeline/service"
	"beleads_backend/internal/quota"
	quotarepo "beleads_backend/internal/quota/repository"
	"beleads_backend/internal/scheduler"
	"beleads_backend/platform/config"
	"beleads_backend/platform/db"
	"beleads_backend/platform/lock"
	"beleads_backend/platform/logger"
	"beleads_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const acquisitionLockPrefix = "beleads:acquisition:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	reconcileQueue, closeQueue := initReconcileQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	locker, closeLocker := initLocker(cfg, log)
	if closeLocker != nil {
		defer closeLocker()
	}

	source, err := directory.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize directory source", "error", err)
		panic("failed to initialize directory source: " + err.Error())
	}
	log.Info("directory source initialized", "provider", cfg.GetDirectoryProvider())

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogService, err := catalogsvc.Load(cfg.GetCatalogPath())
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		panic("failed to load catalog: " + err.Error())
	}
	catalogModule, err := catalog.NewModule(catalogService, val)
	if err != nil {
		log.Error("failed to initialize catalog module", "error", err)
		panic("failed to initialize catalog module: " + err.Error())
	}

	quotaModule := quota.NewModule(quotarepo.New(pool), catalogService, cfg, log)

	var queue pipelinesvc.Queue
	if reconcileQueue != nil {
		queue = reconcileQueue
	}
	pipelineModule := pipeline.NewModule(pipelinerepo.New(pool), queue, eventBus, cfg, val, log)
	pipelineModule.RegisterHandlers(eventBus)

	// Anti-Corruption Layer: acquisition only sees its own ports
	acquisitionModule := acquisition.NewModule(acquisition.Dependencies{
		Ledger:   adapters.NewQuotaLedgerAdapter(quotaModule.Ledger()),
		Source:   source,
		History:  acquisitionrepo.New(pool),
		Pipeline: adapters.NewPipelineReaderAdapter(pipelineModule.Service()),
		Regions:  catalogService,
		Locker:   locker,
		Bus:      eventBus,
	}, cfg, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			quotaModule,
			acquisitionModule,
			pipelineModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReconcileQueue(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; failed pipeline writes are only logged")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reconciliation queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initLocker(cfg *config.Config, log *logger.Logger) (lock.Locker, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; acquisition lock is process-local")
		return lock.NewLocal(), nil
	}

	client, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis lock client; falling back to process-local lock", "error", err)
		return lock.NewLocal(), nil
	}

	return lock.NewRedis(client, acquisitionLockPrefix, cfg.GetAcquisitionLockTTL()), func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
