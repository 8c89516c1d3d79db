package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"beleads_backend/internal/pipeline/domain"
	pipelinesvc "beleads_backend/internal/pipeline/service"
	"beleads_backend/platform/logger"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeReapplier struct {
	persisted []domain.CRMLead
	deleted   []uuid.UUID
	err       error
}

func (f *fakeReapplier) ReapplyPersist(_ context.Context, lead domain.CRMLead) error {
	if f.err != nil {
		return f.err
	}
	f.persisted = append(f.persisted, lead)
	return nil
}

func (f *fakeReapplier) ReapplyDelete(_ context.Context, _ uuid.UUID, leadID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, leadID)
	return nil
}

func sampleLead() domain.CRMLead {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	recycle := now.Add(domain.DefaultRecycleCooldown)
	return domain.CRMLead{
		ID:                  uuid.New(),
		SubscriberID:        uuid.New(),
		ExternalID:          "llm:abc",
		Name:                "Padaria Central",
		Phone:               "+5511999990000",
		Rating:              4.6,
		ReviewCount:         120,
		Status:              domain.StatusLost,
		Priority:            domain.PriorityHigh,
		Tags:                []string{"vip"},
		PotentialValueCents: 150000,
		Notes:               "call back",
		AddedAt:             now,
		UpdatedAt:           now,
		RecycleAt:           &recycle,
	}
}

func TestPersistTaskCarriesWholeLead(t *testing.T) {
	lead := sampleLead()
	task, err := NewPipelinePersistTask(lead)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskPipelinePersist {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	got, err := ParsePipelinePersistPayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(lead, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkerReappliesCommands(t *testing.T) {
	reapplier := &fakeReapplier{}
	w := newWorker(reapplier, logger.Discard())
	ctx := context.Background()

	lead := sampleLead()
	persist, _ := NewPipelinePersistTask(lead)
	if err := w.mux.ProcessTask(ctx, persist); err != nil {
		t.Fatalf("persist task: %v", err)
	}
	del, _ := NewPipelineDeleteTask(lead.SubscriberID, lead.ID)
	if err := w.mux.ProcessTask(ctx, del); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	if len(reapplier.persisted) != 1 || reapplier.persisted[0].ID != lead.ID {
		t.Fatalf("unexpected persisted leads %+v", reapplier.persisted)
	}
	if len(reapplier.deleted) != 1 || reapplier.deleted[0] != lead.ID {
		t.Fatalf("unexpected deleted ids %v", reapplier.deleted)
	}
}

func TestWorkerRetriesStoreErrorsAndSkipsBadPayloads(t *testing.T) {
	storeErr := errors.New("store down")
	w := newWorker(&fakeReapplier{err: storeErr}, logger.Discard())
	ctx := context.Background()

	persist, _ := NewPipelinePersistTask(sampleLead())
	if err := w.mux.ProcessTask(ctx, persist); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error for retry, got %v", err)
	}

	bad := asynq.NewTask(TaskPipelineDelete, []byte(`{"subscriberId":"nope"}`))
	if err := w.mux.ProcessTask(ctx, bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for a malformed payload, got %v", err)
	}
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	batch int
	done  chan struct{}
}

func (c *countingSweeper) SweepAll(_ context.Context, batch int) (pipelinesvc.SweepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.batch = batch
	if c.calls == 1 {
		close(c.done)
	}
	return pipelinesvc.SweepResult{}, nil
}

func TestRecycleSweeperRunsImmediatelyAndStops(t *testing.T) {
	sweeper := &countingSweeper{done: make(chan struct{})}
	s := NewRecycleSweeper(sweeper, logger.Discard(), time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	select {
	case <-sweeper.done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not run on start")
	}
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}

	sweeper.mu.Lock()
	defer sweeper.mu.Unlock()
	if sweeper.batch != defaultRecycleSweepBatch {
		t.Fatalf("expected default batch, got %d", sweeper.batch)
	}
}

func TestRedisClientOptAppliesInsecureTLS(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache.internal:6380/2", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected options %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}
}
