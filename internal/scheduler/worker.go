package scheduler

import (
	"context"
	"fmt"

	"beleads_backend/internal/pipeline/domain"
	"beleads_backend/platform/config"
	"beleads_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Reapplier writes reconciliation commands to the pipeline store.
type Reapplier interface {
	ReapplyPersist(ctx context.Context, lead domain.CRMLead) error
	ReapplyDelete(ctx context.Context, subscriberID, leadID uuid.UUID) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	reapplier Reapplier
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, reapplier Reapplier, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(reapplier, log)
	w.server = server
	return w, nil
}

func newWorker(reapplier Reapplier, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:       mux,
		reapplier: reapplier,
		log:       log,
	}

	mux.HandleFunc(TaskPipelinePersist, w.handlePipelinePersist)
	mux.HandleFunc(TaskPipelineDelete, w.handlePipelineDelete)

	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handlePipelinePersist(ctx context.Context, task *asynq.Task) error {
	lead, err := ParsePipelinePersistPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.reapplier.ReapplyPersist(ctx, lead); err != nil {
		return err
	}
	w.log.Info("pipeline lead reconciled", "lead_id", lead.ID.String(), "operation", "persist")
	return nil
}

func (w *Worker) handlePipelineDelete(ctx context.Context, task *asynq.Task) error {
	subscriberID, leadID, err := ParsePipelineDeletePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.reapplier.ReapplyDelete(ctx, subscriberID, leadID); err != nil {
		return err
	}
	w.log.Info("pipeline lead reconciled", "lead_id", leadID.String(), "operation", "delete")
	return nil
}
