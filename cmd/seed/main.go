// seed inserts a verified demo user with a funded wallet, sample
// transactions, and a support ticket into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/infrastructure/postgres"
)

const (
	seedEmail    = "demo@financex.local"
	seedName     = "Demo User"
	seedPassword = "Demo!Pass1"
	seedBalance  = 12500.00
)

type txSpec struct {
	id       string
	txType   string
	method   string
	amount   float64
	currency string
	usdValue float64
	status   string
}

var transactions = []txSpec{
	{"seed-tx-001", "deposit", "card", 5000, "USD", 5000, "completed"},
	{"seed-tx-002", "deposit", "paypal", 2500, "USD", 2500, "completed"},
	{"seed-tx-003", "deposit", "btc", 0.05, "BTC", 2162.50, "completed"},
	{"seed-tx-004", "deposit", "eth", 1.2, "ETH", 2706.00, "completed"},
	{"seed-tx-005", "deposit", "btc", 0, "BTC", 0, "pending"},
	{"seed-tx-006", "deposit", "card", 100, "USD", 0, "failed"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	if err := postgres.RunMigrations(ctx, dbURL); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert the demo user, already verified so the seed works without email
	_, err = pool.Exec(ctx, `
		INSERT INTO users (email, name, password_hash, is_verified)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()`,
		seedEmail, seedName, string(hash),
	)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	var walletID string
	err = pool.QueryRow(ctx, `
		INSERT INTO wallets (email, wallet_id, balance)
		VALUES ($1, 'seed-wallet-demo', $2)
		ON CONFLICT (wallet_id) DO UPDATE SET updated_at = NOW()
		RETURNING wallet_id`,
		seedEmail, seedBalance,
	).Scan(&walletID)
	if err != nil {
		log.Fatalf("upsert wallet: %v", err)
	}

	for _, w := range domain.DefaultBackupWallets() {
		_, err = pool.Exec(ctx, `
			INSERT INTO backup_wallets (email, name, logo, currency)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (
				SELECT 1 FROM backup_wallets WHERE email = $1 AND name = $2
			)`,
			seedEmail, w.Name, w.Logo, w.Currency,
		)
		if err != nil {
			log.Fatalf("insert backup wallet %s: %v", w.Name, err)
		}
	}

	var inserted, skipped int
	for _, spec := range transactions {
		tag, err := pool.Exec(ctx, `
			INSERT INTO transactions (id, email, type, method, amount, currency, usd_value, status, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			        CASE WHEN $8 = 'completed' THEN NOW() END)
			ON CONFLICT (id) DO NOTHING`,
			spec.id, seedEmail, spec.txType, spec.method,
			spec.amount, spec.currency, spec.usdValue, spec.status,
		)
		if err != nil {
			log.Fatalf("insert transaction %s: %v", spec.id, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
		} else {
			inserted++
		}
	}

	var ticketID string
	err = pool.QueryRow(ctx, `
		INSERT INTO support_tickets (email, subject, description, priority, category)
		SELECT $1, 'Deposit stuck in pending', 'My BTC deposit has been pending for an hour.', 'high', 'payments'
		WHERE NOT EXISTS (
			SELECT 1 FROM support_tickets WHERE email = $1 AND subject = 'Deposit stuck in pending'
		)
		RETURNING id`,
		seedEmail,
	).Scan(&ticketID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Fatalf("insert ticket: %v", err)
	}
	if err == nil {
		_, err = pool.Exec(ctx, `
			INSERT INTO ticket_messages (ticket_id, author, content)
			VALUES ($1, 'user', 'My BTC deposit has been pending for an hour.')`,
			ticketID,
		)
		if err != nil {
			log.Fatalf("insert ticket message: %v", err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:                 %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  Wallet:               %s ($%.2f)\n", walletID, seedBalance)
	fmt.Printf("  Transactions created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in (the session cookie lands in cookies.txt):")
	fmt.Println()
	fmt.Printf("    curl -s -c cookies.txt -X POST http://localhost:8080/api/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  Step 2 — check the wallet and history:")
	fmt.Println()
	fmt.Println("    curl -s -b cookies.txt http://localhost:8080/api/wallet")
	fmt.Println("    curl -s -b cookies.txt http://localhost:8080/api/transactions")
	fmt.Println()
	fmt.Println("  Step 3 — poll the pending BTC deposit until the simulator confirms it:")
	fmt.Println()
	fmt.Println("    curl -s -b cookies.txt -X POST http://localhost:8080/api/payments/crypto/check \\")
	fmt.Println("      -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"id\":\"seed-tx-005\",\"crypto_type\":\"btc\",\"address\":\"demo-address\"}'")
	fmt.Println()
	fmt.Println("    # After ~30s the deposit completes and the wallet balance jumps.")
}
