package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financex/financex/internal/domain"
)

const backupWalletColumns = `id, email, name, logo, balance, currency,
	public_address, private_key_enc, seed_phrase_enc, qr_code_data,
	created_at, updated_at`

type BackupWalletRepository struct {
	pool *pgxpool.Pool
}

func NewBackupWalletRepository(pool *pgxpool.Pool) *BackupWalletRepository {
	return &BackupWalletRepository{pool: pool}
}

func (r *BackupWalletRepository) ListByEmail(ctx context.Context, email string) ([]*domain.BackupWallet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+backupWalletColumns+`
		FROM backup_wallets
		WHERE email = $1
		ORDER BY created_at ASC`, email)
	if err != nil {
		return nil, fmt.Errorf("list backup wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.BackupWallet
	for rows.Next() {
		w, err := scanBackupWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (r *BackupWalletRepository) GetByID(ctx context.Context, id, email string) (*domain.BackupWallet, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+backupWalletColumns+`
		FROM backup_wallets
		WHERE id = $1 AND email = $2`, id, email)
	return scanBackupWallet(row)
}

func (r *BackupWalletRepository) Create(ctx context.Context, w *domain.BackupWallet) (*domain.BackupWallet, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO backup_wallets (
			email, name, logo, balance, currency,
			public_address, private_key_enc, seed_phrase_enc, qr_code_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+backupWalletColumns,
		w.Email, w.Name, w.Logo, w.Balance, w.Currency,
		w.PublicAddress, w.PrivateKeyEnc, w.SeedPhraseEnc, w.QRCodeData)
	return scanBackupWallet(row)
}

func (r *BackupWalletRepository) Update(ctx context.Context, w *domain.BackupWallet) (*domain.BackupWallet, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE backup_wallets
		SET    name            = $3,
		       logo            = $4,
		       balance         = $5,
		       currency        = $6,
		       public_address  = $7,
		       private_key_enc = $8,
		       seed_phrase_enc = $9,
		       qr_code_data    = $10,
		       updated_at      = NOW()
		WHERE  id = $1 AND email = $2
		RETURNING `+backupWalletColumns,
		w.ID, w.Email, w.Name, w.Logo, w.Balance, w.Currency,
		w.PublicAddress, w.PrivateKeyEnc, w.SeedPhraseEnc, w.QRCodeData)
	return scanBackupWallet(row)
}

func (r *BackupWalletRepository) Delete(ctx context.Context, id, email string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM backup_wallets WHERE id = $1 AND email = $2`, id, email)
	if err != nil {
		return fmt.Errorf("delete backup wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBackupWalletNotFound
	}
	return nil
}

func (r *BackupWalletRepository) UpsertByAddress(ctx context.Context, w *domain.BackupWallet) (*domain.BackupWallet, error) {
	// Relies on the partial unique index over (email, public_address).
	row := r.pool.QueryRow(ctx, `
		INSERT INTO backup_wallets (
			email, name, logo, balance, currency,
			public_address, private_key_enc, seed_phrase_enc, qr_code_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (email, public_address) WHERE public_address IS NOT NULL
		DO UPDATE SET
			name            = EXCLUDED.name,
			logo            = EXCLUDED.logo,
			balance         = EXCLUDED.balance,
			currency        = EXCLUDED.currency,
			private_key_enc = COALESCE(EXCLUDED.private_key_enc, backup_wallets.private_key_enc),
			seed_phrase_enc = COALESCE(EXCLUDED.seed_phrase_enc, backup_wallets.seed_phrase_enc),
			qr_code_data    = COALESCE(EXCLUDED.qr_code_data, backup_wallets.qr_code_data),
			updated_at      = NOW()
		RETURNING `+backupWalletColumns,
		w.Email, w.Name, w.Logo, w.Balance, w.Currency,
		w.PublicAddress, w.PrivateKeyEnc, w.SeedPhraseEnc, w.QRCodeData)
	return scanBackupWallet(row)
}

func (r *BackupWalletRepository) ExistsByAddress(ctx context.Context, email, address string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM backup_wallets
			WHERE email = $1 AND public_address = $2
		)`, email, address).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check backup address: %w", err)
	}
	return exists, nil
}

func scanBackupWallet(row rowScanner) (*domain.BackupWallet, error) {
	var w domain.BackupWallet
	err := row.Scan(
		&w.ID, &w.Email, &w.Name, &w.Logo, &w.Balance, &w.Currency,
		&w.PublicAddress, &w.PrivateKeyEnc, &w.SeedPhraseEnc, &w.QRCodeData,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBackupWalletNotFound
		}
		return nil, fmt.Errorf("scan backup wallet: %w", err)
	}
	return &w, nil
}
