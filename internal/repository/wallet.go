package repository

import (
	"context"

	"github.com/financex/financex/internal/domain"
)

type WalletRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Wallet, error)

	// Credit adds to the main wallet balance.
	Credit(ctx context.Context, email string, amount float64) error
}

type BackupWalletRepository interface {
	ListByEmail(ctx context.Context, email string) ([]*domain.BackupWallet, error)
	GetByID(ctx context.Context, id, email string) (*domain.BackupWallet, error)
	Create(ctx context.Context, w *domain.BackupWallet) (*domain.BackupWallet, error)
	Update(ctx context.Context, w *domain.BackupWallet) (*domain.BackupWallet, error)
	Delete(ctx context.Context, id, email string) error

	// UpsertByAddress creates or updates the wallet-connect backup row keyed
	// by (email, public address).
	UpsertByAddress(ctx context.Context, w *domain.BackupWallet) (*domain.BackupWallet, error)

	// ExistsByAddress reports whether the user already stored a backup for
	// the given public address.
	ExistsByAddress(ctx context.Context, email, address string) (bool, error)
}
