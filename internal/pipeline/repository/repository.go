// Package repository persists pipeline leads and goals in Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beleads_backend/internal/pipeline/domain"
	"beleads_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	leadColumns = `id, subscriber_id, external_id, name, category, address, phone, website, rating,
		review_count, external_map_link, status, priority, tags, potential_value_cents, notes,
		added_at, updated_at, recycle_at`

	leadValues = `$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19`

	uniqueViolation = "23505"

	msgLeadNotFound = "pipeline lead not found"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) Insert(ctx context.Context, lead domain.CRMLead) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO pipeline_leads (`+leadColumns+`) VALUES (`+leadValues+`)`, leadArgs(lead)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Conflict("lead is already in the pipeline")
		}
		return fmt.Errorf("insert pipeline lead: %w", err)
	}
	return nil
}

func (r *Repository) Upsert(ctx context.Context, lead domain.CRMLead) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pipeline_leads (`+leadColumns+`) VALUES (`+leadValues+`)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			external_map_link = EXCLUDED.external_map_link,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			tags = EXCLUDED.tags,
			potential_value_cents = EXCLUDED.potential_value_cents,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at,
			recycle_at = EXCLUDED.recycle_at
		WHERE pipeline_leads.updated_at <= EXCLUDED.updated_at
	`, leadArgs(lead)...)
	if err != nil {
		return fmt.Errorf("upsert pipeline lead: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, subscriberID, leadID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM pipeline_leads WHERE subscriber_id = $1 AND id = $2`, subscriberID, leadID); err != nil {
		return fmt.Errorf("delete pipeline lead: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, subscriberID, leadID uuid.UUID) (domain.CRMLead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM pipeline_leads WHERE subscriber_id = $1 AND id = $2`, subscriberID, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CRMLead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return domain.CRMLead{}, fmt.Errorf("get pipeline lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) List(ctx context.Context, subscriberID uuid.UUID) ([]domain.CRMLead, error) {
	return r.queryLeads(ctx, `
		SELECT `+leadColumns+`
		FROM pipeline_leads
		WHERE subscriber_id = $1
		ORDER BY updated_at DESC
	`, subscriberID)
}

func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.CRMLead, error) {
	return r.queryLeads(ctx, `
		SELECT `+leadColumns+`
		FROM pipeline_leads
		WHERE recycle_at IS NOT NULL AND recycle_at <= $1
		ORDER BY recycle_at ASC
		LIMIT $2
	`, now, limit)
}

func (r *Repository) ExternalIDs(ctx context.Context, subscriberID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT external_id FROM pipeline_leads WHERE subscriber_id = $1`, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("list pipeline external ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}

func (r *Repository) HasExternalID(ctx context.Context, subscriberID uuid.UUID, externalID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM pipeline_leads WHERE subscriber_id = $1 AND external_id = $2)
	`, subscriberID, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pipeline external id: %w", err)
	}
	return exists, nil
}

func (r *Repository) GetGoal(ctx context.Context, subscriberID uuid.UUID) (domain.Goal, error) {
	goal := domain.Goal{SubscriberID: subscriberID}
	err := r.pool.QueryRow(ctx, `
		SELECT monthly_target_cents, reset_day, updated_at
		FROM pipeline_goals
		WHERE subscriber_id = $1
	`, subscriberID).Scan(&goal.MonthlyTargetCents, &goal.ResetDay, &goal.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultGoal(subscriberID), nil
	}
	if err != nil {
		return domain.Goal{}, fmt.Errorf("get pipeline goal: %w", err)
	}
	return goal, nil
}

func (r *Repository) UpsertGoal(ctx context.Context, goal domain.Goal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pipeline_goals (subscriber_id, monthly_target_cents, reset_day, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subscriber_id) DO UPDATE SET
			monthly_target_cents = EXCLUDED.monthly_target_cents,
			reset_day = EXCLUDED.reset_day,
			updated_at = EXCLUDED.updated_at
	`, goal.SubscriberID, goal.MonthlyTargetCents, goal.ResetDay, goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert pipeline goal: %w", err)
	}
	return nil
}

func (r *Repository) queryLeads(ctx context.Context, query string, args ...any) ([]domain.CRMLead, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pipeline leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.CRMLead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

func scanLead(row pgx.Row) (domain.CRMLead, error) {
	var (
		l        domain.CRMLead
		phone    *string
		website  *string
		status   string
		priority string
	)
	err := row.Scan(
		&l.ID,
		&l.SubscriberID,
		&l.ExternalID,
		&l.Name,
		&l.Category,
		&l.Address,
		&phone,
		&website,
		&l.Rating,
		&l.ReviewCount,
		&l.ExternalMapLink,
		&status,
		&priority,
		&l.Tags,
		&l.PotentialValueCents,
		&l.Notes,
		&l.AddedAt,
		&l.UpdatedAt,
		&l.RecycleAt,
	)
	if err != nil {
		return domain.CRMLead{}, err
	}
	if phone != nil {
		l.Phone = *phone
	}
	if website != nil {
		l.Website = *website
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	l.Status = domain.Status(status)
	l.Priority = domain.Priority(priority)
	return l, nil
}

func leadArgs(l domain.CRMLead) []any {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		l.ID, l.SubscriberID, l.ExternalID, l.Name, l.Category, l.Address,
		nullable(l.Phone), nullable(l.Website), l.Rating, l.ReviewCount, l.ExternalMapLink,
		string(l.Status), string(l.Priority), tags, l.PotentialValueCents, l.Notes,
		l.AddedAt, l.UpdatedAt, l.RecycleAt,
	}
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
