package adapters

import (
	"context"
	"testing"
	"time"

	"beleads_backend/internal/acquisition/ports"
	catalogsvc "beleads_backend/internal/catalog/service"
	"beleads_backend/internal/events"
	pipelinedomain "beleads_backend/internal/pipeline/domain"
	pipelinerepo "beleads_backend/internal/pipeline/repository"
	pipelinesvc "beleads_backend/internal/pipeline/service"
	quotarepo "beleads_backend/internal/quota/repository"
	quotasvc "beleads_backend/internal/quota/service"
	"beleads_backend/platform/apperr"
	"beleads_backend/platform/logger"

	"github.com/google/uuid"
)

// The catalog service is consumed by acquisition without an adapter.
var _ ports.RegionCatalog = (*catalogsvc.Service)(nil)

func TestQuotaLedgerAdapterRoundTrip(t *testing.T) {
	ctx := context.Background()
	ledger := quotasvc.New(quotarepo.NewMemory(), catalogsvc.Default(), 15*time.Minute, logger.Discard())
	adapter := NewQuotaLedgerAdapter(ledger)
	sub := uuid.New()

	res, err := adapter.Reserve(ctx, sub, 10)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	remaining, err := adapter.Commit(ctx, res, 4)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if remaining != 46 {
		t.Fatalf("expected 46 remaining on the free plan, got %d", remaining)
	}

	_, err = adapter.Reserve(ctx, sub, 47)
	if got, ok := apperr.Remaining(err); !ok || got != 46 {
		t.Fatalf("expected quota error with 46 remaining, got %v", err)
	}

	res, _ = adapter.Reserve(ctx, sub, 46)
	if err := adapter.Release(ctx, res); err != nil {
		t.Fatalf("release: %v", err)
	}
	snap, _ := ledger.Snapshot(ctx, sub)
	if snap.Remaining != 46 || snap.Reserved != 0 {
		t.Fatalf("unexpected snapshot after release: %+v", snap)
	}
}

func TestPipelineReaderAdapterListsExternalIDs(t *testing.T) {
	ctx := context.Background()
	svc := pipelinesvc.New(pipelinerepo.NewMemory(), nil, events.NewInMemoryBus(logger.Discard()), 0, logger.Discard())
	sub := uuid.New()
	if _, err := svc.AddToPipeline(ctx, sub, pipelinedomain.Source{ExternalID: "ext-1", Name: "Padaria"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	ids, err := NewPipelineReaderAdapter(svc).ExternalIDs(ctx, sub)
	if err != nil {
		t.Fatalf("external ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != "ext-1" {
		t.Fatalf("unexpected ids %v", ids)
	}
}
