// Package repository persists quota accounts in Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"

	"beleads_backend/internal/quota/domain"
	"beleads_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `subscriber_id, plan_id, leads_used, leads_reserved, reserved_at, last_credit_reset, updated_at`

// Repository is the Postgres Store. Update holds a row lock for the duration of fn.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) Get(ctx context.Context, subscriberID uuid.UUID) (domain.Account, error) {
	acct, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM quota_accounts WHERE subscriber_id = $1`, subscriberID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, apperr.NotFound("quota account not found")
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get quota account: %w", err)
	}
	return acct, nil
}

func (r *Repository) Update(ctx context.Context, subscriberID uuid.UUID, init domain.Account, fn func(*domain.Account) error) (domain.Account, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Account{}, fmt.Errorf("begin quota tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Concurrent first requests race on the insert; DO NOTHING lets the loser
	// fall through to the locking select and wait for the winner's row.
	if _, err := tx.Exec(ctx, `
		INSERT INTO quota_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subscriber_id) DO NOTHING
	`, subscriberID, init.PlanID, init.LeadsUsed, init.LeadsReserved, init.ReservedAt, init.LastCreditReset, init.UpdatedAt); err != nil {
		return domain.Account{}, fmt.Errorf("ensure quota account: %w", err)
	}

	acct, err := scanAccount(tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM quota_accounts WHERE subscriber_id = $1 FOR UPDATE`, subscriberID))
	if err != nil {
		return domain.Account{}, fmt.Errorf("lock quota account: %w", err)
	}

	if err := fn(&acct); err != nil {
		return domain.Account{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE quota_accounts
		SET plan_id = $2, leads_used = $3, leads_reserved = $4, reserved_at = $5,
			last_credit_reset = $6, updated_at = $7
		WHERE subscriber_id = $1
	`, subscriberID, acct.PlanID, acct.LeadsUsed, acct.LeadsReserved, acct.ReservedAt, acct.LastCreditReset, acct.UpdatedAt); err != nil {
		return domain.Account{}, fmt.Errorf("save quota account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Account{}, fmt.Errorf("commit quota tx: %w", err)
	}
	return acct, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var acct domain.Account
	err := row.Scan(
		&acct.SubscriberID,
		&acct.PlanID,
		&acct.LeadsUsed,
		&acct.LeadsReserved,
		&acct.ReservedAt,
		&acct.LastCreditReset,
		&acct.UpdatedAt,
	)
	return acct, err
}
