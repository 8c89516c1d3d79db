// Package repository stores acquisition history.
package repository

import (
	"context"
	"fmt"
	"time"

	"beleads_backend/internal/acquisition/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var historyColumns = []string{"id", "subscriber_id", "query_text", "search_mode", "lead_id", "lead_name", "lead_phone", "created_at"}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ HistoryRepository = (*Repository)(nil)

func (r *Repository) Append(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := r.pool.CopyFrom(ctx, pgx.Identifier{"acquisition_history"}, historyColumns,
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			var phone *string
			if e.LeadPhone != "" {
				phone = &e.LeadPhone
			}
			return []any{e.ID, e.SubscriberID, e.Query, string(e.Mode), e.LeadID, e.LeadName, phone, e.CreatedAt}, nil
		}))
	if err != nil {
		return fmt.Errorf("append acquisition history: %w", err)
	}
	return nil
}

func (r *Repository) LeadIDs(ctx context.Context, subscriberID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT lead_id
		FROM acquisition_history
		WHERE subscriber_id = $1
	`, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("list history lead ids: %w", err)
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

func (r *Repository) ListSince(ctx context.Context, subscriberID uuid.UUID, since time.Time) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, subscriber_id, query_text, search_mode, lead_id, lead_name, COALESCE(lead_phone, ''), created_at
		FROM acquisition_history
		WHERE subscriber_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`, subscriberID, since)
	if err != nil {
		return nil, fmt.Errorf("list acquisition history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var mode string
		if err := rows.Scan(&e.ID, &e.SubscriberID, &e.Query, &mode, &e.LeadID, &e.LeadName, &e.LeadPhone, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Mode = domain.Mode(mode)
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}
