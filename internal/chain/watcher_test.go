package chain_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/financex/financex/internal/chain"
)

func TestSimulator_PendingBeforeDelay(t *testing.T) {
	w := chain.NewSimulator(30 * time.Second)

	st, err := w.Check(context.Background(), "btc", "bc1qaddr", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Confirmed {
		t.Error("deposit confirmed before the delay elapsed")
	}
}

func TestSimulator_ConfirmedAfterDelay(t *testing.T) {
	w := chain.NewSimulator(30 * time.Second)

	st, err := w.Check(context.Background(), "btc", "bc1qaddr", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Confirmed {
		t.Fatal("deposit not confirmed after the delay elapsed")
	}
	if st.Confirmations != chain.RequiredConfirmations("btc") {
		t.Errorf("confirmations = %d, want %d", st.Confirmations, chain.RequiredConfirmations("btc"))
	}
	if st.Amount <= 0 {
		t.Errorf("amount = %v, want > 0", st.Amount)
	}
	if !strings.HasPrefix(st.TxHash, "0x") || len(st.TxHash) != 66 {
		t.Errorf("tx hash %q is not a 0x-prefixed 32-byte hex string", st.TxHash)
	}
}

func TestRequiredConfirmations_PerCoin(t *testing.T) {
	want := map[string]int{"btc": 3, "eth": 12, "usdt": 12, "sol": 1, "unknown": 1}
	for coin, n := range want {
		if got := chain.RequiredConfirmations(coin); got != n {
			t.Errorf("RequiredConfirmations(%q) = %d, want %d", coin, got, n)
		}
	}
}
