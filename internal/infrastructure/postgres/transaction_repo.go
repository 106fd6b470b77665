package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/repository"
)

const transactionColumns = `id, email, type, method, amount, currency,
	usd_value, status, tx_hash, confirmations, created_at, completed_at,
	updated_at`

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (
			id, email, type, method, amount, currency, usd_value, status,
			tx_hash, confirmations
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+transactionColumns,
		t.ID, t.Email, t.Type, t.Method, t.Amount, t.Currency, t.USDValue,
		t.Status, t.TxHash, t.Confirmations)
	return scanTransaction(row)
}

func (r *TransactionRepository) GetByID(ctx context.Context, id, email string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND email = $2`, id, email)
	return scanTransaction(row)
}

func (r *TransactionRepository) List(ctx context.Context, input repository.ListTransactionsInput) ([]*domain.Transaction, int, error) {
	args := []any{input.Email}
	where := []string{"email = $1"}

	if input.Type != "" {
		args = append(args, input.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	args = append(args, input.Limit, (input.Page-1)*input.Limit)
	query := fmt.Sprintf(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, t)
	}
	return txs, total, rows.Err()
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id, email string, status domain.TransactionStatus, amount *float64, txHash *string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET    status       = $3,
		       amount       = COALESCE($4, amount),
		       tx_hash      = COALESCE($5, tx_hash),
		       completed_at = CASE WHEN $3 = 'completed' THEN NOW() ELSE completed_at END,
		       updated_at   = NOW()
		WHERE  id = $1 AND email = $2
		RETURNING `+transactionColumns,
		id, email, status, amount, txHash)
	return scanTransaction(row)
}

func (r *TransactionRepository) ConfirmDeposit(ctx context.Context, id string, amount, usdValue float64, txHash string, confirmations int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin confirm tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// The status guard makes the credit exactly-once: a second poll that
	// races the first sees no pending row and credits nothing.
	var email string
	err = tx.QueryRow(ctx, `
		UPDATE transactions
		SET    status        = 'completed',
		       amount        = $2,
		       usd_value     = $3,
		       tx_hash       = $4,
		       confirmations = $5,
		       completed_at  = NOW(),
		       updated_at    = NOW()
		WHERE  id = $1 AND status = 'pending'
		RETURNING email`,
		id, amount, usdValue, txHash, confirmations).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("confirm deposit: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE wallets
		SET    balance = balance + $2, updated_at = NOW()
		WHERE  email = $1`, email, usdValue)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *TransactionRepository) CompleteDeposit(ctx context.Context, id, email string, amount float64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin complete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE transactions
		SET    status       = 'completed',
		       amount       = $3,
		       usd_value    = $3,
		       completed_at = NOW(),
		       updated_at   = NOW()
		WHERE  id = $1 AND email = $2 AND status = 'pending'`,
		id, email, amount)
	if err != nil {
		return fmt.Errorf("complete deposit: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the row never existed (provider-initiated webhook) or it
		// is already completed. Insert-if-absent keeps the credit single.
		tag, err = tx.Exec(ctx, `
			INSERT INTO transactions (id, email, type, method, amount, currency, usd_value, status, completed_at)
			VALUES ($1, $2, 'deposit', 'paypal', $3, 'USD', $3, 'completed', NOW())
			ON CONFLICT (id) DO NOTHING`,
			id, email, amount)
		if err != nil {
			return fmt.Errorf("insert webhook deposit: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return tx.Commit(ctx)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE wallets
		SET    balance = balance + $2, updated_at = NOW()
		WHERE  email = $1`, email, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *TransactionRepository) FailStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transactions
		SET    status = 'failed', updated_at = NOW()
		WHERE  status = 'pending' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("fail stale deposits: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID, &t.Email, &t.Type, &t.Method, &t.Amount, &t.Currency,
		&t.USDValue, &t.Status, &t.TxHash, &t.Confirmations, &t.CreatedAt,
		&t.CompletedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &t, nil
}
