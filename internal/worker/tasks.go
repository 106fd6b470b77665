package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/financex/financex/internal/metrics"
	"github.com/financex/financex/internal/repository"
)

// NewAccrual advances current_return on active locked funds.
func NewAccrual(funds repository.LockedFundRepository, cronExpr string, logger *slog.Logger) (*Loop, error) {
	return NewLoop("accrual", cronExpr, func(ctx context.Context, now time.Time) (int64, error) {
		start := time.Now()
		n, err := funds.AccrueReturns(ctx, now)
		metrics.AccrualCycleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			return 0, err
		}
		metrics.AccruedPositionsTotal.Add(float64(n))
		return n, nil
	}, logger)
}

// NewOTPPurge nulls out verification codes past their expiry.
func NewOTPPurge(users repository.UserRepository, cronExpr string, logger *slog.Logger) (*Loop, error) {
	return NewLoop("otp_purge", cronExpr, func(ctx context.Context, now time.Time) (int64, error) {
		n, err := users.ClearExpiredOTPs(ctx, now)
		if err != nil {
			return 0, err
		}
		metrics.ExpiredOTPsClearedTotal.Add(float64(n))
		return n, nil
	}, logger)
}

// NewDepositExpiry fails crypto deposits that stayed pending past staleAfter.
func NewDepositExpiry(transactions repository.TransactionRepository, cronExpr string, staleAfter time.Duration, logger *slog.Logger) (*Loop, error) {
	return NewLoop("deposit_expiry", cronExpr, func(ctx context.Context, now time.Time) (int64, error) {
		n, err := transactions.FailStale(ctx, now.Add(-staleAfter))
		if err != nil {
			return 0, err
		}
		metrics.StaleDepositsFailedTotal.Add(float64(n))
		return n, nil
	}, logger)
}
