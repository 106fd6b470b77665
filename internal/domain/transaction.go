package domain

import (
	"errors"
	"time"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionType string

const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionWithdraw TransactionType = "withdraw"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction records a single wallet movement. Crypto deposits carry the
// client-supplied ID so the browser's polling stays an idempotent read; fiat
// transactions get a generated ID.
type Transaction struct {
	ID            string
	Email         string
	Type          TransactionType
	Method        string
	Amount        float64
	Currency      string
	USDValue      *float64
	Status        TransactionStatus
	TxHash        *string
	Confirmations int
	CreatedAt     time.Time
	CompletedAt   *time.Time
	UpdatedAt     time.Time
}
