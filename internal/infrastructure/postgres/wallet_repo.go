package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financex/financex/internal/domain"
)

type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) FindByEmail(ctx context.Context, email string) (*domain.Wallet, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, wallet_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE email = $1`, email)

	var w domain.Wallet
	err := row.Scan(&w.ID, &w.Email, &w.WalletID, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return &w, nil
}

func (r *WalletRepository) Credit(ctx context.Context, email string, amount float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE wallets
		SET    balance = balance + $2, updated_at = NOW()
		WHERE  email = $1`, email, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}
