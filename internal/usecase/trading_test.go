package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/usecase"
)

type fakeLockedFundRepo struct {
	lock          func(ctx context.Context, f *domain.LockedFund) (*domain.LockedFund, error)
	listByEmail   func(ctx context.Context, email string) ([]*domain.LockedFund, error)
	accrueReturns func(ctx context.Context, now time.Time) (int64, error)
}

func (r *fakeLockedFundRepo) Lock(ctx context.Context, f *domain.LockedFund) (*domain.LockedFund, error) {
	return r.lock(ctx, f)
}

func (r *fakeLockedFundRepo) ListByEmail(ctx context.Context, email string) ([]*domain.LockedFund, error) {
	return r.listByEmail(ctx, email)
}

func (r *fakeLockedFundRepo) AccrueReturns(ctx context.Context, now time.Time) (int64, error) {
	return r.accrueReturns(ctx, now)
}

func TestLock_ComputesExpectedReturnAndTerm(t *testing.T) {
	var captured *domain.LockedFund
	repo := &fakeLockedFundRepo{
		lock: func(_ context.Context, f *domain.LockedFund) (*domain.LockedFund, error) {
			captured = f
			return f, nil
		},
	}

	_, err := usecase.NewTradingUsecase(repo).Lock(context.Background(), testEmail, "growth", 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.ExpectedReturn != 2000*0.18 {
		t.Errorf("expected return = %v, want %v", captured.ExpectedReturn, 2000*0.18)
	}
	wantEnd := captured.StartDate.AddDate(0, 0, 60)
	if !captured.EndDate.Equal(wantEnd) {
		t.Errorf("end date = %v, want %v", captured.EndDate, wantEnd)
	}
}

func TestLock_RejectsAmountsOutsidePackageLimits(t *testing.T) {
	repo := &fakeLockedFundRepo{
		lock: func(context.Context, *domain.LockedFund) (*domain.LockedFund, error) {
			t.Fatal("out-of-range amounts must not reach the repository")
			return nil, nil
		},
	}
	trading := usecase.NewTradingUsecase(repo)

	for _, amount := range []float64{99, 5001} {
		_, err := trading.Lock(context.Background(), testEmail, "starter", amount)
		if !errors.Is(err, domain.ErrAmountOutOfRange) {
			t.Errorf("amount %v: want ErrAmountOutOfRange, got %v", amount, err)
		}
	}
}

func TestLock_UnknownPackage(t *testing.T) {
	_, err := usecase.NewTradingUsecase(&fakeLockedFundRepo{}).Lock(context.Background(), testEmail, "diamond", 500)
	if !errors.Is(err, domain.ErrPackageNotFound) {
		t.Errorf("want ErrPackageNotFound, got %v", err)
	}
}

func TestLock_InsufficientBalance_Propagates(t *testing.T) {
	repo := &fakeLockedFundRepo{
		lock: func(context.Context, *domain.LockedFund) (*domain.LockedFund, error) {
			return nil, domain.ErrInsufficientBalance
		},
	}

	_, err := usecase.NewTradingUsecase(repo).Lock(context.Background(), testEmail, "starter", 500)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Errorf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestLocked_SumsPositions(t *testing.T) {
	repo := &fakeLockedFundRepo{
		listByEmail: func(context.Context, string) ([]*domain.LockedFund, error) {
			return []*domain.LockedFund{
				{Amount: 1000, CurrentReturn: 40},
				{Amount: 5000, CurrentReturn: 360},
			}, nil
		},
	}

	s, err := usecase.NewTradingUsecase(repo).Locked(context.Background(), testEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TotalLocked != 6000 {
		t.Errorf("total locked = %v, want 6000", s.TotalLocked)
	}
	if s.TotalReturns != 400 {
		t.Errorf("total returns = %v, want 400", s.TotalReturns)
	}
}
