package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financex/financex/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT email, name, password_hash, is_verified, otp, otp_expires_at,
		       created_at, updated_at
		FROM users
		WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) CreateWithWallets(ctx context.Context, user *domain.User, walletID string, backups []domain.BackupWallet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin signup tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (email, name, password_hash, is_verified, otp, otp_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.Email, user.Name, user.PasswordHash, user.IsVerified, user.OTP, user.OTPExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO wallets (email, wallet_id) VALUES ($1, $2)`,
		user.Email, walletID)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}

	for _, b := range backups {
		_, err = tx.Exec(ctx, `
			INSERT INTO backup_wallets (email, name, logo, currency)
			VALUES ($1, $2, $3, $4)`,
			user.Email, b.Name, b.Logo, b.Currency)
		if err != nil {
			return fmt.Errorf("insert backup wallet %q: %w", b.Name, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) SetOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    otp = $2, otp_expires_at = $3, updated_at = NOW()
		WHERE  email = $1`, email, code, expiresAt)
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    is_verified = TRUE, otp = NULL, otp_expires_at = NULL, updated_at = NOW()
		WHERE  email = $1`, email)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    otp = NULL, otp_expires_at = NULL, updated_at = NOW()
		WHERE  otp_expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("clear expired otps: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) Delete(ctx context.Context, email string) error {
	// Wallets and tickets go with the user via ON DELETE CASCADE.
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	return err
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.Email, &u.Name, &u.PasswordHash, &u.IsVerified, &u.OTP, &u.OTPExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
