// Package service implements the pipeline lead lifecycle, the recycler and
// goal tracking on top of a PipelineStore.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"beleads_backend/internal/events"
	"beleads_backend/internal/pipeline/domain"
	"beleads_backend/internal/pipeline/repository"
	"beleads_backend/platform/apperr"
	"beleads_backend/platform/logger"
	"beleads_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	restoreParallelism = 5
	defaultSweepBatch  = 200
)

// LeadPatch carries the editable fields. Nil fields are left untouched.
type LeadPatch struct {
	Priority            *domain.Priority
	Tags                *[]string
	PotentialValueCents *int64
	Notes               *string
}

// SweepResult summarises one SweepAll run.
type SweepResult struct {
	Scanned  int
	Restored int
	Failed   int
}

// Service owns every pipeline mutation.
type Service struct {
	store    repository.Store
	queue    Queue
	recon    *ReconciliationLog
	bus      events.Bus
	log      *logger.Logger
	cooldown time.Duration
	now      func() time.Time
}

// New creates the pipeline service. queue may be nil, in which case failed
// writes are only logged and recorded.
func New(store repository.Store, queue Queue, bus events.Bus, cooldown time.Duration, log *logger.Logger) *Service {
	if cooldown <= 0 {
		cooldown = domain.DefaultRecycleCooldown
	}
	return &Service{
		store:    store,
		queue:    queue,
		recon:    NewReconciliationLog(),
		bus:      bus,
		log:      log,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Reconciliation exposes the failed-write log.
func (s *Service) Reconciliation() *ReconciliationLog {
	return s.recon
}

// AddToPipeline adopts an acquired lead. A lead whose external id is
// already in the subscriber's pipeline is rejected with a conflict.
func (s *Service) AddToPipeline(ctx context.Context, subscriberID uuid.UUID, src domain.Source) (domain.CRMLead, error) {
	if strings.TrimSpace(src.ExternalID) == "" {
		return domain.CRMLead{}, apperr.Validation("externalId is required")
	}
	if strings.TrimSpace(src.Name) == "" {
		return domain.CRMLead{}, apperr.Validation("name is required")
	}

	exists, err := s.store.HasExternalID(ctx, subscriberID, strings.TrimSpace(src.ExternalID))
	if err != nil {
		return domain.CRMLead{}, err
	}
	if exists {
		return domain.CRMLead{}, apperr.Conflict("lead is already in the pipeline")
	}

	lead := domain.NewCRMLead(subscriberID, src, s.now())
	if err := s.store.Insert(ctx, lead); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return domain.CRMLead{}, err
		}
		s.persist(ctx, lead)
	}
	return lead, nil
}

// HandleLeadsAcquired adopts every lead of an acquisition that asked for it.
// Leads already in the pipeline are skipped.
func (s *Service) HandleLeadsAcquired(ctx context.Context, event events.LeadsAcquired) error {
	if !event.AddToPipeline {
		return nil
	}
	for _, l := range event.Leads {
		_, err := s.AddToPipeline(ctx, event.SubscriberID, domain.Source{
			ExternalID:      l.ExternalID,
			Name:            l.Name,
			Category:        l.Category,
			Address:         l.Address,
			Phone:           l.Phone,
			Website:         l.Website,
			Rating:          l.Rating,
			ReviewCount:     l.ReviewCount,
			ExternalMapLink: l.ExternalMapLink,
		})
		if err != nil && !apperr.Is(err, apperr.KindConflict) {
			return err
		}
	}
	return nil
}

// List loads the pipeline and restores every lost lead whose cooldown has
// passed before returning it.
func (s *Service) List(ctx context.Context, subscriberID uuid.UUID) ([]domain.CRMLead, error) {
	leads, err := s.store.List(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	scan := domain.Scan(leads, now)
	if len(scan.ToRestore) == 0 {
		return leads, nil
	}

	s.restore(ctx, scan.ToRestore)

	restored := make(map[uuid.UUID]domain.CRMLead, len(scan.ToRestore))
	for _, l := range scan.ToRestore {
		restored[l.ID] = l
	}
	out := make([]domain.CRMLead, len(leads))
	for i, l := range leads {
		if r, ok := restored[l.ID]; ok {
			out[i] = r
			continue
		}
		out[i] = l
	}
	return out, nil
}

// Get returns one lead, restoring it first when its recycle is due.
func (s *Service) Get(ctx context.Context, subscriberID, leadID uuid.UUID) (domain.CRMLead, error) {
	lead, err := s.store.Get(ctx, subscriberID, leadID)
	if err != nil {
		return domain.CRMLead{}, err
	}
	scan := domain.Scan([]domain.CRMLead{lead}, s.now())
	if len(scan.ToRestore) == 1 {
		s.restore(ctx, scan.ToRestore)
		return scan.ToRestore[0], nil
	}
	return lead, nil
}

// Update edits priority, tags, value and notes.
func (s *Service) Update(ctx context.Context, subscriberID, leadID uuid.UUID, patch LeadPatch) (domain.CRMLead, error) {
	if patch.PotentialValueCents != nil && *patch.PotentialValueCents < 0 {
		return domain.CRMLead{}, apperr.Validation("potentialValue must not be negative")
	}

	lead, err := s.store.Get(ctx, subscriberID, leadID)
	if err != nil {
		return domain.CRMLead{}, err
	}

	now := s.now()
	if patch.Priority != nil {
		lead.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		lead.SetTags(sanitize.Lines(*patch.Tags), now)
	}
	if patch.PotentialValueCents != nil {
		lead.PotentialValueCents = *patch.PotentialValueCents
	}
	if patch.Notes != nil {
		lead.Notes = sanitize.Text(*patch.Notes)
	}
	lead.UpdatedAt = now

	s.persist(ctx, lead)
	return lead, nil
}

// ChangeStatus moves a lead to another column.
func (s *Service) ChangeStatus(ctx context.Context, subscriberID, leadID uuid.UUID, status domain.Status) (domain.CRMLead, error) {
	lead, err := s.store.Get(ctx, subscriberID, leadID)
	if err != nil {
		return domain.CRMLead{}, err
	}

	old := lead.Status
	lead.ChangeStatus(status, s.now(), s.cooldown)
	s.persist(ctx, lead)

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:    events.NewBaseEvent(),
		SubscriberID: subscriberID,
		LeadID:       lead.ID,
		OldStatus:    string(old),
		NewStatus:    string(lead.Status),
		RecycleAt:    lead.RecycleAt,
	})
	return lead, nil
}

// Delete hard-deletes a lead.
func (s *Service) Delete(ctx context.Context, subscriberID, leadID uuid.UUID) error {
	if _, err := s.store.Get(ctx, subscriberID, leadID); err != nil {
		return err
	}
	s.remove(ctx, subscriberID, leadID)
	return nil
}

// ExternalIDs lists the directory ids of every lead in the pipeline.
func (s *Service) ExternalIDs(ctx context.Context, subscriberID uuid.UUID) ([]string, error) {
	return s.store.ExternalIDs(ctx, subscriberID)
}

func (s *Service) GetGoal(ctx context.Context, subscriberID uuid.UUID) (domain.Goal, error) {
	return s.store.GetGoal(ctx, subscriberID)
}

// SetGoal saves the monthly target and the day the revenue window resets.
func (s *Service) SetGoal(ctx context.Context, subscriberID uuid.UUID, monthlyTargetCents int64, resetDay int) (domain.Goal, error) {
	if monthlyTargetCents < 0 {
		return domain.Goal{}, apperr.Validation("monthlyTarget must not be negative")
	}
	if resetDay < 1 || resetDay > 31 {
		return domain.Goal{}, apperr.Validation("resetDay must be between 1 and 31")
	}

	goal := domain.Goal{
		SubscriberID:       subscriberID,
		MonthlyTargetCents: monthlyTargetCents,
		ResetDay:           resetDay,
		UpdatedAt:          s.now(),
	}
	if err := s.store.UpsertGoal(ctx, goal); err != nil {
		return domain.Goal{}, err
	}
	return goal, nil
}

// Revenue sums won value inside the current goal window.
func (s *Service) Revenue(ctx context.Context, subscriberID uuid.UUID) (domain.Revenue, error) {
	goal, err := s.store.GetGoal(ctx, subscriberID)
	if err != nil {
		return domain.Revenue{}, err
	}
	leads, err := s.store.List(ctx, subscriberID)
	if err != nil {
		return domain.Revenue{}, err
	}
	return domain.ComputeRevenue(leads, goal, s.now()), nil
}

// SweepAll restores due leads of every subscriber in batches. It stops at
// the first batch with a failed write so the same rows are not retried in
// a tight loop; the next sweep picks them up again.
func (s *Service) SweepAll(ctx context.Context, batch int) (SweepResult, error) {
	if batch <= 0 {
		batch = defaultSweepBatch
	}

	var res SweepResult
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		now := s.now()
		due, err := s.store.ListDue(ctx, now, batch)
		if err != nil {
			return res, err
		}
		if len(due) == 0 {
			break
		}

		scan := domain.Scan(due, now)
		res.Scanned += len(due)
		failed := s.sweepBatch(ctx, scan.ToRestore)
		res.Restored += len(scan.ToRestore) - failed
		res.Failed += failed

		if failed > 0 || len(due) < batch {
			break
		}
	}

	s.log.RecycleSweep(res.Scanned, res.Restored, res.Failed)
	return res, nil
}

func (s *Service) sweepBatch(ctx context.Context, leads []domain.CRMLead) int {
	var (
		mu     sync.Mutex
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(restoreParallelism)
	for _, lead := range leads {
		g.Go(func() error {
			if err := s.store.Upsert(gctx, lead); err != nil {
				s.log.PersistenceFailure(OpPersist, lead.ID.String(), err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			s.publishRecycled(ctx, lead)
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

// restore writes recycled leads with bounded parallelism. Failures go
// through the writeback path and never reach the caller.
func (s *Service) restore(ctx context.Context, leads []domain.CRMLead) {
	var g errgroup.Group
	g.SetLimit(restoreParallelism)
	for _, lead := range leads {
		g.Go(func() error {
			s.persist(ctx, lead)
			return nil
		})
	}
	_ = g.Wait()

	for _, lead := range leads {
		s.publishRecycled(ctx, lead)
	}
}

func (s *Service) publishRecycled(ctx context.Context, lead domain.CRMLead) {
	s.bus.Publish(ctx, events.LeadRecycled{
		BaseEvent:    events.NewBaseEvent(),
		SubscriberID: lead.SubscriberID,
		LeadID:       lead.ID,
		RecycledAt:   lead.UpdatedAt,
	})
}
