package usecase

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/financex/financex/internal/chain"
	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/rates"
	"github.com/financex/financex/internal/repository"
)

type PaymentUsecase struct {
	transactions repository.TransactionRepository
	rates        rates.Provider
	watcher      chain.Watcher
}

func NewPaymentUsecase(transactions repository.TransactionRepository, ratesProvider rates.Provider, watcher chain.Watcher) *PaymentUsecase {
	return &PaymentUsecase{
		transactions: transactions,
		rates:        ratesProvider,
		watcher:      watcher,
	}
}

// Rates returns the current crypto price table.
func (u *PaymentUsecase) Rates(ctx context.Context) (map[string]rates.Rate, error) {
	return u.rates.Rates(ctx)
}

type ProcessFiatInput struct {
	Email  string
	Amount float64
	Method string // "card" or "paypal"
}

// paypalCheckoutBase is where the client approves a PayPal deposit. The
// capture webhook settles the transaction afterwards.
const paypalCheckoutBase = "https://www.paypal.com/checkoutnow"

// ProcessFiat records a fiat deposit. Card payments settle immediately with
// no redirect; PayPal deposits stay pending and return the provider checkout
// URL the client must visit.
func (u *PaymentUsecase) ProcessFiat(ctx context.Context, input ProcessFiatInput) (*domain.Transaction, string, error) {
	usd := input.Amount
	tx := &domain.Transaction{
		ID:       "fiat_" + uuid.NewString(),
		Email:    input.Email,
		Type:     domain.TransactionDeposit,
		Method:   input.Method,
		Amount:   input.Amount,
		Currency: "USD",
		USDValue: &usd,
		Status:   domain.TransactionPending,
	}

	created, err := u.transactions.Create(ctx, tx)
	if err != nil {
		return nil, "", err
	}

	if input.Method == "paypal" {
		return created, paypalRedirectURL(created), nil
	}

	if err := u.transactions.CompleteDeposit(ctx, created.ID, created.Email, created.Amount); err != nil {
		return nil, "", err
	}
	settled, err := u.transactions.GetByID(ctx, created.ID, created.Email)
	if err != nil {
		return nil, "", err
	}
	return settled, "", nil
}

// paypalRedirectURL carries the user's email as custom_id (echoed back in
// the capture webhook) and the transaction ID as invoice_id.
func paypalRedirectURL(tx *domain.Transaction) string {
	q := url.Values{}
	q.Set("custom_id", tx.Email)
	q.Set("invoice_id", tx.ID)
	q.Set("amount", strconv.FormatFloat(tx.Amount, 'f', 2, 64))
	q.Set("currency", tx.Currency)
	return paypalCheckoutBase + "?" + q.Encode()
}

type CheckDepositInput struct {
	Email      string
	ID         string // client-generated deposit ID, stable across polls
	CryptoType string // btc, eth, usdt, sol
	Address    string
}

// CheckDeposit is the idempotent poll behind the crypto deposit screen. The
// first call registers the pending deposit; later calls report chain state
// and, once the watcher sees enough confirmations, complete the deposit and
// credit the wallet exactly once.
func (u *PaymentUsecase) CheckDeposit(ctx context.Context, input CheckDepositInput) (*domain.Transaction, error) {
	tx, err := u.transactions.GetByID(ctx, input.ID, input.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			return nil, err
		}
		tx, err = u.transactions.Create(ctx, &domain.Transaction{
			ID:       input.ID,
			Email:    input.Email,
			Type:     domain.TransactionDeposit,
			Method:   input.CryptoType,
			Currency: input.CryptoType,
			Status:   domain.TransactionPending,
		})
		if err != nil {
			return nil, err
		}
	}

	if tx.Status != domain.TransactionPending {
		return tx, nil
	}

	status, err := u.watcher.Check(ctx, input.CryptoType, input.Address, tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	if !status.Confirmed || status.Confirmations < chain.RequiredConfirmations(input.CryptoType) {
		return tx, nil
	}

	usdValue, err := u.usdValue(ctx, input.CryptoType, status.Amount)
	if err != nil {
		return nil, err
	}

	err = u.transactions.ConfirmDeposit(ctx, tx.ID, status.Amount, usdValue, status.TxHash, status.Confirmations)
	if err != nil {
		return nil, err
	}
	return u.transactions.GetByID(ctx, tx.ID, input.Email)
}

// History pages through the caller's transactions with optional type and
// status filters.
func (u *PaymentUsecase) History(ctx context.Context, input repository.ListTransactionsInput) ([]*domain.Transaction, int, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 || input.Limit > 100 {
		input.Limit = 20
	}
	return u.transactions.List(ctx, input)
}

func (u *PaymentUsecase) GetTransaction(ctx context.Context, id, email string) (*domain.Transaction, error) {
	return u.transactions.GetByID(ctx, id, email)
}

type UpdateTransactionInput struct {
	Email  string
	ID     string
	Status domain.TransactionStatus
	Amount *float64
	TxHash *string
}

func (u *PaymentUsecase) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error) {
	return u.transactions.UpdateStatus(ctx, input.ID, input.Email, input.Status, input.Amount, input.TxHash)
}

type PayPalEvent struct {
	EventType string
	CaptureID string
	Email     string
	Amount    float64
}

// HandlePayPalWebhook settles a pending PayPal deposit when the capture
// completes. Other event types are acknowledged and ignored.
func (u *PaymentUsecase) HandlePayPalWebhook(ctx context.Context, event PayPalEvent) error {
	if event.EventType != "PAYMENT.CAPTURE.COMPLETED" {
		return nil
	}
	return u.transactions.CompleteDeposit(ctx, event.CaptureID, event.Email, event.Amount)
}

func (u *PaymentUsecase) usdValue(ctx context.Context, cryptoType string, amount float64) (float64, error) {
	table, err := u.rates.Rates(ctx)
	if err != nil {
		return 0, err
	}
	r, ok := table[cryptoType]
	if !ok {
		return amount, nil
	}
	return amount * r.USD, nil
}
