package usecase

import (
	"context"
	"time"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/repository"
)

type TradingUsecase struct {
	funds repository.LockedFundRepository
}

func NewTradingUsecase(funds repository.LockedFundRepository) *TradingUsecase {
	return &TradingUsecase{funds: funds}
}

// Packages returns the fixed catalogue.
func (u *TradingUsecase) Packages() []domain.TradingPackage {
	return domain.TradingPackages()
}

// Lock opens a position in the given package, debiting the main wallet. The
// amount must fall inside the package's limits and the wallet must cover it.
func (u *TradingUsecase) Lock(ctx context.Context, email, packageID string, amount float64) (*domain.LockedFund, error) {
	pkg, err := domain.FindTradingPackage(packageID)
	if err != nil {
		return nil, err
	}
	if amount < pkg.MinAmount || amount > pkg.MaxAmount {
		return nil, domain.ErrAmountOutOfRange
	}

	now := time.Now()
	return u.funds.Lock(ctx, &domain.LockedFund{
		Email:          email,
		PackageID:      pkg.ID,
		PackageName:    pkg.Name,
		Amount:         amount,
		ExpectedReturn: amount * pkg.ReturnRate,
		StartDate:      now,
		EndDate:        now.AddDate(0, 0, pkg.DurationDays),
	})
}

// LockedSummary is the dashboard view of the caller's positions.
type LockedSummary struct {
	Funds        []*domain.LockedFund
	TotalLocked  float64
	TotalReturns float64
}

func (u *TradingUsecase) Locked(ctx context.Context, email string) (*LockedSummary, error) {
	funds, err := u.funds.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	s := &LockedSummary{Funds: funds}
	for _, f := range funds {
		s.TotalLocked += f.Amount
		s.TotalReturns += f.CurrentReturn
	}
	return s, nil
}
