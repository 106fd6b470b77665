package domain

import (
	"errors"
	"time"
)

var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrBackupWalletNotFound = errors.New("backup wallet not found")
	ErrInsufficientBalance  = errors.New("insufficient balance")
)

type Wallet struct {
	ID        string
	Email     string
	WalletID  string
	Balance   float64
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BackupWallet holds an external wallet linked to the account. PrivateKeyEnc
// and SeedPhraseEnc are AES-256-GCM ciphertexts; list endpoints never return
// them, only the get-by-id path decrypts.
type BackupWallet struct {
	ID            string
	Email         string
	Name          string
	Logo          string
	Balance       float64
	Currency      string
	PublicAddress *string
	PrivateKeyEnc *string
	SeedPhraseEnc *string
	QRCodeData    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DefaultBackupWallets are the placeholder rows created alongside every new
// account.
func DefaultBackupWallets() []BackupWallet {
	return []BackupWallet{
		{Name: "Metamask", Logo: "/assets/metamask.svg", Currency: "ETH"},
		{Name: "Trust Wallet", Logo: "/assets/trust-wallet-token.svg", Currency: "Multi"},
		{Name: "Binance", Logo: "/assets/binance-svgrepo-com.svg", Currency: "BNB"},
	}
}
