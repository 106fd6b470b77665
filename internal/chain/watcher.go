// Package chain abstracts the blockchain collaborator the crypto deposit
// flow polls against: given a deposit, report its confirmation state.
package chain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// Status is a point-in-time view of a deposit on chain.
type Status struct {
	Confirmed     bool
	Confirmations int
	TxHash        string
	Amount        float64
}

// Watcher answers "how confirmed is this deposit". A production
// implementation would query a chain API (BlockCypher, Etherscan, Solana
// RPC); the simulator below fakes confirmation after a fixed delay.
type Watcher interface {
	Check(ctx context.Context, cryptoType, address string, submittedAt time.Time) (Status, error)
}

// RequiredConfirmations returns the confirmation threshold per coin.
func RequiredConfirmations(cryptoType string) int {
	switch cryptoType {
	case "btc":
		return 3
	case "eth", "usdt":
		return 12
	case "sol":
		return 1
	default:
		return 1
	}
}

// Simulator confirms every deposit once confirmDelay has elapsed since
// submission, with a randomized plausible amount and a fabricated tx hash.
type Simulator struct {
	confirmDelay time.Duration
}

func NewSimulator(confirmDelay time.Duration) *Simulator {
	return &Simulator{confirmDelay: confirmDelay}
}

func (s *Simulator) Check(_ context.Context, cryptoType, _ string, submittedAt time.Time) (Status, error) {
	if time.Since(submittedAt) < s.confirmDelay {
		return Status{Confirmed: false}, nil
	}

	amount, err := randomAmount(cryptoType)
	if err != nil {
		return Status{}, err
	}
	hash, err := randomTxHash()
	if err != nil {
		return Status{}, err
	}

	return Status{
		Confirmed:     true,
		Confirmations: RequiredConfirmations(cryptoType),
		TxHash:        hash,
		Amount:        amount,
	}, nil
}

func randomAmount(cryptoType string) (float64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10_000))
	if err != nil {
		return 0, fmt.Errorf("random amount: %w", err)
	}
	frac := float64(n.Int64()) / 10_000

	switch cryptoType {
	case "btc":
		return frac*0.1 + 0.001, nil
	case "eth":
		return frac*2 + 0.01, nil
	case "usdt":
		return frac*1000 + 10, nil
	case "sol":
		return frac*10 + 0.1, nil
	default:
		return 0, nil
	}
}

func randomTxHash() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("random tx hash: %w", err)
	}
	return "0x" + hex.EncodeToString(raw), nil
}
