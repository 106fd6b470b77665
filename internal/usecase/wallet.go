package usecase

import (
	"context"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/repository"
)

type WalletUsecase struct {
	wallets repository.WalletRepository
	users   repository.UserRepository
}

func NewWalletUsecase(wallets repository.WalletRepository, users repository.UserRepository) *WalletUsecase {
	return &WalletUsecase{wallets: wallets, users: users}
}

// Balance returns the caller's main wallet.
func (u *WalletUsecase) Balance(ctx context.Context, email string) (*domain.Wallet, error) {
	return u.wallets.FindByEmail(ctx, email)
}

// Profile returns the account record for the profile page. The handler strips
// the credential fields before responding.
func (u *WalletUsecase) Profile(ctx context.Context, email string) (*domain.User, error) {
	return u.users.FindByEmail(ctx, email)
}
