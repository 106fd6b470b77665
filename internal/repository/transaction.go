package repository

import (
	"context"
	"time"

	"github.com/financex/financex/internal/domain"
)

type ListTransactionsInput struct {
	Email  string
	Type   domain.TransactionType   // empty = all
	Status domain.TransactionStatus // empty = all
	Page   int
	Limit  int
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	GetByID(ctx context.Context, id, email string) (*domain.Transaction, error)
	List(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, int, error)

	// UpdateStatus patches status/amount/tx-hash on the caller's transaction.
	UpdateStatus(ctx context.Context, id, email string, status domain.TransactionStatus, amount *float64, txHash *string) (*domain.Transaction, error)

	// ConfirmDeposit marks a pending deposit completed and credits the main
	// wallet in one transaction. The pending-status guard makes the credit
	// exactly-once under concurrent polls.
	ConfirmDeposit(ctx context.Context, id string, amount, usdValue float64, txHash string, confirmations int) error

	// CompleteDeposit finishes a pending fiat deposit (webhook path) and
	// credits the wallet, creating the transaction row if the provider never
	// echoed one back.
	CompleteDeposit(ctx context.Context, id, email string, amount float64) error

	// FailStale marks deposits pending since before cutoff as failed.
	FailStale(ctx context.Context, cutoff time.Time) (int64, error)
}
