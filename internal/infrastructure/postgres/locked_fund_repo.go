package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financex/financex/internal/domain"
)

const lockedFundColumns = `id, email, package_id, package_name, amount,
	expected_return, current_return, start_date, end_date, created_at,
	updated_at`

type LockedFundRepository struct {
	pool *pgxpool.Pool
}

func NewLockedFundRepository(pool *pgxpool.Pool) *LockedFundRepository {
	return &LockedFundRepository{pool: pool}
}

func (r *LockedFundRepository) Lock(ctx context.Context, f *domain.LockedFund) (*domain.LockedFund, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin lock tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// The balance guard in the WHERE clause rejects overdrafts without a
	// separate read.
	tag, err := tx.Exec(ctx, `
		UPDATE wallets
		SET    balance = balance - $2, updated_at = NOW()
		WHERE  email = $1 AND balance >= $2`, f.Email, f.Amount)
	if err != nil {
		return nil, fmt.Errorf("debit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrInsufficientBalance
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO locked_funds (
			email, package_id, package_name, amount, expected_return,
			current_return, start_date, end_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+lockedFundColumns,
		f.Email, f.PackageID, f.PackageName, f.Amount, f.ExpectedReturn,
		f.CurrentReturn, f.StartDate, f.EndDate)

	var created domain.LockedFund
	err = row.Scan(
		&created.ID, &created.Email, &created.PackageID, &created.PackageName,
		&created.Amount, &created.ExpectedReturn, &created.CurrentReturn,
		&created.StartDate, &created.EndDate, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert locked fund: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *LockedFundRepository) ListByEmail(ctx context.Context, email string) ([]*domain.LockedFund, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+lockedFundColumns+`
		FROM locked_funds
		WHERE email = $1
		ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("list locked funds: %w", err)
	}
	defer rows.Close()

	var funds []*domain.LockedFund
	for rows.Next() {
		var f domain.LockedFund
		err := rows.Scan(
			&f.ID, &f.Email, &f.PackageID, &f.PackageName, &f.Amount,
			&f.ExpectedReturn, &f.CurrentReturn, &f.StartDate, &f.EndDate,
			&f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan locked fund: %w", err)
		}
		funds = append(funds, &f)
	}
	return funds, rows.Err()
}

func (r *LockedFundRepository) AccrueReturns(ctx context.Context, now time.Time) (int64, error) {
	// Linear accrual between start and end, clamped to [0, expected].
	tag, err := r.pool.Exec(ctx, `
		UPDATE locked_funds
		SET    current_return = LEAST(
		           expected_return,
		           GREATEST(0, expected_return *
		               EXTRACT(EPOCH FROM ($1::timestamptz - start_date)) /
		               EXTRACT(EPOCH FROM (end_date - start_date)))),
		       updated_at = NOW()
		WHERE  current_return < expected_return`, now)
	if err != nil {
		return 0, fmt.Errorf("accrue returns: %w", err)
	}
	return tag.RowsAffected(), nil
}
