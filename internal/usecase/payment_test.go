package usecase_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/financex/financex/internal/chain"
	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/rates"
	"github.com/financex/financex/internal/repository"
	"github.com/financex/financex/internal/usecase"
)

// ---- fakes ----

type fakeTransactionRepo struct {
	create          func(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	getByID         func(ctx context.Context, id, email string) (*domain.Transaction, error)
	list            func(ctx context.Context, input repository.ListTransactionsInput) ([]*domain.Transaction, int, error)
	updateStatus    func(ctx context.Context, id, email string, status domain.TransactionStatus, amount *float64, txHash *string) (*domain.Transaction, error)
	confirmDeposit  func(ctx context.Context, id string, amount, usdValue float64, txHash string, confirmations int) error
	completeDeposit func(ctx context.Context, id, email string, amount float64) error
	failStale       func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	return r.create(ctx, tx)
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id, email string) (*domain.Transaction, error) {
	return r.getByID(ctx, id, email)
}

func (r *fakeTransactionRepo) List(ctx context.Context, input repository.ListTransactionsInput) ([]*domain.Transaction, int, error) {
	return r.list(ctx, input)
}

func (r *fakeTransactionRepo) UpdateStatus(ctx context.Context, id, email string, status domain.TransactionStatus, amount *float64, txHash *string) (*domain.Transaction, error) {
	return r.updateStatus(ctx, id, email, status, amount, txHash)
}

func (r *fakeTransactionRepo) ConfirmDeposit(ctx context.Context, id string, amount, usdValue float64, txHash string, confirmations int) error {
	return r.confirmDeposit(ctx, id, amount, usdValue, txHash, confirmations)
}

func (r *fakeTransactionRepo) CompleteDeposit(ctx context.Context, id, email string, amount float64) error {
	return r.completeDeposit(ctx, id, email, amount)
}

func (r *fakeTransactionRepo) FailStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.failStale(ctx, cutoff)
}

type fakeWatcher struct {
	check func(ctx context.Context, cryptoType, address string, submittedAt time.Time) (chain.Status, error)
}

func (w *fakeWatcher) Check(ctx context.Context, cryptoType, address string, submittedAt time.Time) (chain.Status, error) {
	return w.check(ctx, cryptoType, address, submittedAt)
}

func newPayments(repo *fakeTransactionRepo, watcher *fakeWatcher) *usecase.PaymentUsecase {
	if watcher == nil {
		watcher = &fakeWatcher{}
	}
	return usecase.NewPaymentUsecase(repo, rates.StaticProvider{}, watcher)
}

// ---- ProcessFiat ----

func TestProcessFiat_CardSettlesImmediately(t *testing.T) {
	var completedID string
	repo := &fakeTransactionRepo{
		create: func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
			if tx.ID == "" {
				t.Error("fiat transaction needs a generated id")
			}
			if tx.Status != domain.TransactionPending {
				t.Errorf("status = %q, want pending", tx.Status)
			}
			return tx, nil
		},
		completeDeposit: func(_ context.Context, id, _ string, _ float64) error {
			completedID = id
			return nil
		},
		getByID: func(_ context.Context, id, email string) (*domain.Transaction, error) {
			return &domain.Transaction{ID: id, Email: email, Status: domain.TransactionCompleted}, nil
		},
	}

	tx, redirectURL, err := newPayments(repo, nil).ProcessFiat(context.Background(), usecase.ProcessFiatInput{
		Email: testEmail, Amount: 250, Method: "card",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != domain.TransactionCompleted {
		t.Errorf("status = %q, want completed", tx.Status)
	}
	if completedID == "" {
		t.Error("card deposit was not settled")
	}
	if redirectURL != "" {
		t.Errorf("card deposits need no redirect, got %q", redirectURL)
	}
}

func TestProcessFiat_PayPalStaysPendingUntilWebhook(t *testing.T) {
	repo := &fakeTransactionRepo{
		create: func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
			return tx, nil
		},
		completeDeposit: func(context.Context, string, string, float64) error {
			t.Fatal("paypal deposits must not settle without the webhook")
			return nil
		},
	}

	tx, redirectURL, err := newPayments(repo, nil).ProcessFiat(context.Background(), usecase.ProcessFiatInput{
		Email: testEmail, Amount: 100, Method: "paypal",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != domain.TransactionPending {
		t.Errorf("status = %q, want pending", tx.Status)
	}
	if redirectURL == "" {
		t.Fatal("paypal deposits must return the provider checkout URL")
	}
}

func TestProcessFiat_PayPalRedirectCarriesDepositDetails(t *testing.T) {
	repo := &fakeTransactionRepo{
		create: func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
			return tx, nil
		},
	}

	tx, redirectURL, err := newPayments(repo, nil).ProcessFiat(context.Background(), usecase.ProcessFiatInput{
		Email: testEmail, Amount: 99.5, Method: "paypal",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := url.Parse(redirectURL)
	if err != nil {
		t.Fatalf("redirect is not a valid URL: %v", err)
	}
	if parsed.Scheme != "https" || parsed.Host != "www.paypal.com" {
		t.Errorf("redirect points at %s://%s", parsed.Scheme, parsed.Host)
	}
	q := parsed.Query()
	if q.Get("custom_id") != testEmail {
		t.Errorf("custom_id = %q, want the user email", q.Get("custom_id"))
	}
	if q.Get("invoice_id") != tx.ID {
		t.Errorf("invoice_id = %q, want the transaction id %q", q.Get("invoice_id"), tx.ID)
	}
	if q.Get("amount") != "99.50" {
		t.Errorf("amount = %q, want 99.50", q.Get("amount"))
	}
}

// ---- CheckDeposit ----

func TestCheckDeposit_FirstPollRegistersPendingDeposit(t *testing.T) {
	var created *domain.Transaction
	repo := &fakeTransactionRepo{
		getByID: func(context.Context, string, string) (*domain.Transaction, error) {
			return nil, domain.ErrTransactionNotFound
		},
		create: func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
			created = tx
			tx.CreatedAt = time.Now()
			return tx, nil
		},
	}
	watcher := &fakeWatcher{
		check: func(context.Context, string, string, time.Time) (chain.Status, error) {
			return chain.Status{Confirmed: false}, nil
		},
	}

	tx, err := newPayments(repo, watcher).CheckDeposit(context.Background(), usecase.CheckDepositInput{
		Email: testEmail, ID: "dep_abc", CryptoType: "btc", Address: "bc1qxyz",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || created.ID != "dep_abc" {
		t.Fatal("pending deposit was not registered under the client id")
	}
	if tx.Status != domain.TransactionPending {
		t.Errorf("status = %q, want pending", tx.Status)
	}
}

func TestCheckDeposit_ConfirmedPollCreditsAtUSDRate(t *testing.T) {
	var gotUSD float64
	repo := &fakeTransactionRepo{
		getByID: func(_ context.Context, id, email string) (*domain.Transaction, error) {
			return &domain.Transaction{
				ID: id, Email: email,
				Status:    domain.TransactionPending,
				CreatedAt: time.Now().Add(-time.Minute),
			}, nil
		},
		confirmDeposit: func(_ context.Context, _ string, _, usdValue float64, txHash string, confirmations int) error {
			gotUSD = usdValue
			if txHash == "" {
				t.Error("confirmed deposit needs a tx hash")
			}
			if confirmations < chain.RequiredConfirmations("btc") {
				t.Errorf("confirmations = %d, below threshold", confirmations)
			}
			return nil
		},
	}
	watcher := &fakeWatcher{
		check: func(context.Context, string, string, time.Time) (chain.Status, error) {
			return chain.Status{Confirmed: true, Confirmations: 3, TxHash: "0xabc", Amount: 0.5}, nil
		},
	}

	_, err := newPayments(repo, watcher).CheckDeposit(context.Background(), usecase.CheckDepositInput{
		Email: testEmail, ID: "dep_abc", CryptoType: "btc", Address: "bc1qxyz",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table, _ := rates.StaticProvider{}.Rates(context.Background())
	want := 0.5 * table["btc"].USD
	if gotUSD != want {
		t.Errorf("usd value = %v, want %v", gotUSD, want)
	}
}

func TestCheckDeposit_CompletedDeposit_IsReadOnly(t *testing.T) {
	repo := &fakeTransactionRepo{
		getByID: func(_ context.Context, id, email string) (*domain.Transaction, error) {
			return &domain.Transaction{ID: id, Email: email, Status: domain.TransactionCompleted}, nil
		},
		confirmDeposit: func(context.Context, string, float64, float64, string, int) error {
			t.Fatal("completed deposits must not be re-credited")
			return nil
		},
	}
	watcher := &fakeWatcher{
		check: func(context.Context, string, string, time.Time) (chain.Status, error) {
			t.Fatal("completed deposits must not hit the watcher")
			return chain.Status{}, nil
		},
	}

	tx, err := newPayments(repo, watcher).CheckDeposit(context.Background(), usecase.CheckDepositInput{
		Email: testEmail, ID: "dep_abc", CryptoType: "btc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != domain.TransactionCompleted {
		t.Errorf("status = %q, want completed", tx.Status)
	}
}

// ---- History ----

func TestHistory_ClampsPaging(t *testing.T) {
	repo := &fakeTransactionRepo{
		list: func(_ context.Context, input repository.ListTransactionsInput) ([]*domain.Transaction, int, error) {
			if input.Page != 1 {
				t.Errorf("page = %d, want 1", input.Page)
			}
			if input.Limit != 20 {
				t.Errorf("limit = %d, want 20", input.Limit)
			}
			return nil, 0, nil
		},
	}

	_, _, err := newPayments(repo, nil).History(context.Background(), repository.ListTransactionsInput{
		Email: testEmail, Page: -3, Limit: 9999,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ---- PayPal webhook ----

func TestHandlePayPalWebhook_SettlesOnlyCaptureCompleted(t *testing.T) {
	var settled bool
	repo := &fakeTransactionRepo{
		completeDeposit: func(context.Context, string, string, float64) error {
			settled = true
			return nil
		},
	}
	payments := newPayments(repo, nil)

	err := payments.HandlePayPalWebhook(context.Background(), usecase.PayPalEvent{
		EventType: "PAYMENT.CAPTURE.DENIED", CaptureID: "cap_1", Email: testEmail, Amount: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settled {
		t.Fatal("non-capture events must be ignored")
	}

	err = payments.HandlePayPalWebhook(context.Background(), usecase.PayPalEvent{
		EventType: "PAYMENT.CAPTURE.COMPLETED", CaptureID: "cap_1", Email: testEmail, Amount: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !settled {
		t.Fatal("capture completed event must settle the deposit")
	}
}

func TestHandlePayPalWebhook_RepoError_Propagates(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &fakeTransactionRepo{
		completeDeposit: func(context.Context, string, string, float64) error {
			return repoErr
		},
	}

	err := newPayments(repo, nil).HandlePayPalWebhook(context.Background(), usecase.PayPalEvent{
		EventType: "PAYMENT.CAPTURE.COMPLETED", CaptureID: "cap_1", Email: testEmail, Amount: 50,
	})
	if !errors.Is(err, repoErr) {
		t.Errorf("want repo error, got %v", err)
	}
}
