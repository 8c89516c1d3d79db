package adapters

import (
	"context"
	"fmt"

	"beleads_backend/internal/acquisition/ports"
	pipelinesvc "beleads_backend/internal/pipeline/service"

	"github.com/google/uuid"
)

// PipelineReaderAdapter exposes CRM external ids to the acquisition
// exclusion set.
type PipelineReaderAdapter struct {
	svc *pipelinesvc.Service
}

// NewPipelineReaderAdapter creates a new pipeline reader adapter.
func NewPipelineReaderAdapter(svc *pipelinesvc.Service) *PipelineReaderAdapter {
	return &PipelineReaderAdapter{svc: svc}
}

func (a *PipelineReaderAdapter) ExternalIDs(ctx context.Context, subscriberID uuid.UUID) ([]string, error) {
	ids, err := a.svc.ExternalIDs(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("pipeline adapter: external ids: %w", err)
	}
	return ids, nil
}

var _ ports.PipelineReader = (*PipelineReaderAdapter)(nil)
