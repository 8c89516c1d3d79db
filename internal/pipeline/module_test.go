package pipeline

import (
	"context"
	"testing"
	"time"

	"beleads_backend/internal/events"
	"beleads_backend/internal/pipeline/repository"
	"beleads_backend/platform/logger"
	"beleads_backend/platform/validator"

	"github.com/google/uuid"
)

type stubConfig struct{}

func (stubConfig) GetRecycleCooldown() time.Duration      { return 0 }
func (stubConfig) GetRecycleSweepInterval() time.Duration { return time.Hour }
func (stubConfig) GetRecycleSweepBatch() int              { return 10 }

func TestAcquiredLeadsAreAdoptedWhenRequested(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Discard())
	m := NewModule(repository.NewMemory(), nil, bus, stubConfig{}, validator.New(), logger.Discard())
	m.RegisterHandlers(bus)

	ctx := context.Background()
	sub := uuid.New()
	leads := []events.AcquiredLead{{ExternalID: "a", Name: "A"}, {ExternalID: "b", Name: "B"}}

	if err := bus.PublishSync(ctx, events.LeadsAcquired{SubscriberID: sub, Leads: leads}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	ids, _ := m.Service().ExternalIDs(ctx, sub)
	if len(ids) != 0 {
		t.Fatalf("leads must not be adopted without addToPipeline, got %v", ids)
	}

	if err := bus.PublishSync(ctx, events.LeadsAcquired{SubscriberID: sub, Leads: leads, AddToPipeline: true}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	ids, _ = m.Service().ExternalIDs(ctx, sub)
	if len(ids) != 2 {
		t.Fatalf("expected both leads adopted, got %v", ids)
	}
}
