package repository

import (
	"context"
	"time"

	"github.com/financex/financex/internal/domain"
)

// UseCases depend on interfaces, not the pgx implementations, so storage can
// be swapped and tests can inject fakes.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateWithWallets inserts the user, the main wallet, the default
	// backup wallets, and the initial OTP in a single transaction.
	// A uniqueness violation on email surfaces as domain.ErrUserAlreadyExists.
	CreateWithWallets(ctx context.Context, user *domain.User, walletID string, backups []domain.BackupWallet) error

	// SetOTP overwrites any prior unconsumed code.
	SetOTP(ctx context.Context, email, code string, expiresAt time.Time) error

	// MarkVerified flips the verification flag and clears code and expiry
	// atomically.
	MarkVerified(ctx context.Context, email string) error

	// ClearExpiredOTPs nulls out codes past their expiry on unverified
	// accounts. Returns the number of rows touched.
	ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error)

	// Delete is the compensating action for a failed signup.
	Delete(ctx context.Context, email string) error
}
