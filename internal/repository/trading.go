package repository

import (
	"context"
	"time"

	"github.com/financex/financex/internal/domain"
)

type LockedFundRepository interface {
	// Lock debits the main wallet and inserts the position in one
	// transaction; domain.ErrInsufficientBalance if the wallet cannot cover
	// the amount.
	Lock(ctx context.Context, f *domain.LockedFund) (*domain.LockedFund, error)

	ListByEmail(ctx context.Context, email string) ([]*domain.LockedFund, error)

	// AccrueReturns advances current_return linearly toward expected_return
	// for every open position, capped at the expected return once end_date
	// passes. Returns the number of positions touched.
	AccrueReturns(ctx context.Context, now time.Time) (int64, error)
}
