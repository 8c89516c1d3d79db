// Package service implements the SearchOrchestrator: admission control,
// sub-query fan-out, pagination, filtering and the single quota commit.
package service

import (
	"context"
	"fmt"
	"time"

	"beleads_backend/internal/acquisition/directory"
	"beleads_backend/internal/acquisition/domain"
	"beleads_backend/internal/acquisition/ports"
	"beleads_backend/internal/acquisition/repository"
	"beleads_backend/internal/events"
	"beleads_backend/platform/apperr"
	"beleads_backend/platform/lock"
	"beleads_backend/platform/logger"

	"github.com/google/uuid"
)

// Settings tunes pagination and admission.
type Settings struct {
	PageSize  int
	PageCap   int
	PageDelay time.Duration
	MaxTarget int
	// Timeout bounds the directory fan-out. It must stay below the lock TTL
	// and the quota reservation timeout.
	Timeout time.Duration
}

// Result is the outcome of one Acquire call.
type Result struct {
	Leads      []domain.Lead
	Requested  int
	Accepted   int
	Remaining  int
	SubQueries int
	Cancelled  bool
}

// Deps groups the collaborators of the orchestrator.
type Deps struct {
	Ledger   ports.QuotaLedger
	Source   directory.Source
	History  repository.HistoryRepository
	Pipeline ports.PipelineReader
	Regions  ports.RegionCatalog
	Locker   lock.Locker
	Bus      events.Bus
	Log      *logger.Logger
}

// Service is the SearchOrchestrator.
type Service struct {
	deps     Deps
	settings Settings
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

// New creates the orchestrator.
func New(deps Deps, settings Settings) *Service {
	if settings.PageSize < 1 {
		settings.PageSize = 20
	}
	if settings.PageCap < 1 {
		settings.PageCap = 1
	}
	return &Service{
		deps:     deps,
		settings: settings,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// Acquire runs one logical search for the subscriber.
//
// Validation and the quota admission check happen before any directory call.
// Credits are debited once, for exactly the leads returned. A cancelled
// context or an expired Settings.Timeout stops the fan-out; leads accepted
// so far are still committed and returned with Cancelled set.
func (s *Service) Acquire(ctx context.Context, subscriberID uuid.UUID, req domain.Request) (Result, error) {
	req = req.Normalized()
	if err := req.Validate(s.settings.MaxTarget, s.deps.Regions.HasRegion); err != nil {
		return Result{}, err
	}

	log := s.deps.Log.WithContext(ctx)

	unlock, err := s.deps.Locker.Lock(ctx, subscriberID.String())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("acquire subscriber lock: %w", err)
	}
	defer unlock()

	reservation, err := s.deps.Ledger.Reserve(ctx, subscriberID, req.TargetCount)
	if err != nil {
		return Result{}, err
	}

	detached := context.WithoutCancel(ctx)

	excl, err := s.exclusionSet(ctx, subscriberID)
	if err != nil {
		s.release(detached, reservation)
		return Result{}, err
	}

	searchCtx := ctx
	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	subQueries := domain.BuildSubQueries(req, s.deps.Regions.Cities(req.Region))
	accepted, cancelled, err := s.collect(searchCtx, subQueries, req, excl)
	if err != nil {
		s.release(detached, reservation)
		return Result{}, apperr.Unavailable("lead directory is unavailable, try again shortly", err)
	}

	if len(accepted) > req.TargetCount {
		accepted = accepted[:req.TargetCount]
	}

	if err := s.recordHistory(detached, subscriberID, req, accepted); err != nil {
		s.release(detached, reservation)
		return Result{}, err
	}

	remaining, err := s.deps.Ledger.Commit(detached, reservation, len(accepted))
	if err != nil {
		log.DatabaseError("quota_commit", err)
		return Result{}, fmt.Errorf("commit quota: %w", err)
	}

	s.publish(detached, subscriberID, req, accepted)

	log.Acquisition(string(req.Mode), req.TargetCount, len(accepted), len(subQueries), cancelled)

	return Result{
		Leads:      accepted,
		Requested:  req.TargetCount,
		Accepted:   len(accepted),
		Remaining:  remaining,
		SubQueries: len(subQueries),
		Cancelled:  cancelled,
	}, nil
}

// Today lists the leads acquired since local midnight.
func (s *Service) Today(ctx context.Context, subscriberID uuid.UUID) ([]repository.Entry, error) {
	now := s.now()
	y, m, d := now.Date()
	return s.deps.History.ListSince(ctx, subscriberID, time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
}

func (s *Service) exclusionSet(ctx context.Context, subscriberID uuid.UUID) (*domain.ExclusionSet, error) {
	historyIDs, err := s.deps.History.LeadIDs(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("load history ids: %w", err)
	}
	crmIDs, err := s.deps.Pipeline.ExternalIDs(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("load pipeline ids: %w", err)
	}
	return domain.NewExclusionSet(historyIDs, crmIDs), nil
}

// collect walks the sub-queries in order until target leads are accepted.
// A failure of the first sub-query before anything was accepted is returned.
// Later failures are skipped; they are returned only if nothing was accepted.
func (s *Service) collect(ctx context.Context, subQueries []domain.SubQuery, req domain.Request, excl *domain.ExclusionSet) ([]domain.Lead, bool, error) {
	log := s.deps.Log.WithContext(ctx)
	filter := domain.NewFilter(req)
	accepted := make([]domain.Lead, 0, req.TargetCount)

	var lastErr error
	for i, sq := range subQueries {
		if len(accepted) >= req.TargetCount {
			break
		}
		if ctx.Err() != nil {
			return accepted, true, nil
		}

		page, err := s.paginate(ctx, sq, req.TargetCount, filter, excl, &accepted)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return accepted, true, nil
		}

		log.UpstreamFailure(sq.Text, page, err)
		if i == 0 && len(accepted) == 0 {
			return nil, false, err
		}
		lastErr = err
	}

	if len(accepted) == 0 && lastErr != nil {
		return nil, false, lastErr
	}
	return accepted, false, nil
}

// paginate fetches pages of one sub-query. It returns the page number that
// failed alongside any error.
func (s *Service) paginate(ctx context.Context, sq domain.SubQuery, target int, filter domain.Filter, excl *domain.ExclusionSet, accepted *[]domain.Lead) (int, error) {
	cursor := ""
	for page := 1; page <= s.settings.PageCap; page++ {
		if page > 1 {
			if err := s.sleep(ctx, s.settings.PageDelay); err != nil {
				return page, err
			}
		}

		result, err := s.deps.Source.Search(ctx, sq.Text, s.settings.PageSize, cursor)
		if err != nil {
			return page, err
		}
		if len(result.Records) == 0 {
			return page, nil
		}

		for _, rec := range result.Records {
			lead := toLead(rec)
			if excl.Contains(lead.ID) || !filter.Accept(lead) {
				continue
			}
			excl.Add(lead.ID)
			*accepted = append(*accepted, lead)
			if len(*accepted) >= target {
				return page, nil
			}
		}

		if result.NextCursor == "" {
			return page, nil
		}
		cursor = result.NextCursor
	}
	return s.settings.PageCap, nil
}

func (s *Service) recordHistory(ctx context.Context, subscriberID uuid.UUID, req domain.Request, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	now := s.now()
	query := req.QueryText()
	entries := make([]repository.Entry, 0, len(leads))
	for _, l := range leads {
		entries = append(entries, repository.Entry{
			ID:           uuid.New(),
			SubscriberID: subscriberID,
			Query:        query,
			Mode:         req.Mode,
			LeadID:       l.ID,
			LeadName:     l.Name,
			LeadPhone:    l.Phone,
			CreatedAt:    now,
		})
	}
	if err := s.deps.History.Append(ctx, entries); err != nil {
		s.deps.Log.WithContext(ctx).DatabaseError("acquisition_history_append", err)
		return fmt.Errorf("record acquisition history: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, subscriberID uuid.UUID, req domain.Request, leads []domain.Lead) {
	if s.deps.Bus == nil || !req.AddToPipeline || len(leads) == 0 {
		return
	}
	payload := make([]events.AcquiredLead, 0, len(leads))
	for _, l := range leads {
		payload = append(payload, events.AcquiredLead{
			ExternalID:      l.ID,
			Name:            l.Name,
			Category:        l.Category,
			Address:         l.Address,
			Phone:           l.Phone,
			Website:         l.Website,
			Rating:          l.Rating,
			ReviewCount:     l.ReviewCount,
			ExternalMapLink: l.ExternalMapLink,
		})
	}
	err := s.deps.Bus.PublishSync(ctx, events.LeadsAcquired{
		BaseEvent:     events.NewBaseEvent(),
		SubscriberID:  subscriberID,
		Query:         req.QueryText(),
		Mode:          string(req.Mode),
		Leads:         payload,
		AddToPipeline: true,
	})
	if err != nil {
		s.deps.Log.WithContext(ctx).Warn("pipeline hand-off failed", "error", err.Error())
	}
}

func (s *Service) release(ctx context.Context, res ports.Reservation) {
	if err := s.deps.Ledger.Release(ctx, res); err != nil {
		s.deps.Log.WithContext(ctx).DatabaseError("quota_release", err)
	}
}

func toLead(rec directory.Record) domain.Lead {
	return domain.Lead{
		ID:              rec.ID,
		Name:            rec.Name,
		Category:        rec.Category,
		Address:         rec.Address,
		Phone:           rec.Phone,
		Website:         rec.Website,
		Rating:          rec.Rating,
		ReviewCount:     rec.ReviewCount,
		ExternalMapLink: rec.MapLink,
	}.Normalized()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
