package usecase

import (
	"context"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/repository"
	"github.com/financex/financex/internal/secrets"
)

type BackupUsecase struct {
	backups repository.BackupWalletRepository
	cipher  *secrets.Cipher
}

func NewBackupUsecase(backups repository.BackupWalletRepository, cipher *secrets.Cipher) *BackupUsecase {
	return &BackupUsecase{backups: backups, cipher: cipher}
}

// List returns the caller's backup wallets with the secret fields stripped.
// Only the single-wallet path ever decrypts.
func (u *BackupUsecase) List(ctx context.Context, email string) ([]*domain.BackupWallet, error) {
	wallets, err := u.backups.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, w := range wallets {
		w.PrivateKeyEnc = nil
		w.SeedPhraseEnc = nil
	}
	return wallets, nil
}

// Get returns one backup wallet with its secrets decrypted for display.
func (u *BackupUsecase) Get(ctx context.Context, id, email string) (*domain.BackupWallet, error) {
	w, err := u.backups.GetByID(ctx, id, email)
	if err != nil {
		return nil, err
	}
	if err := u.decryptInPlace(w); err != nil {
		return nil, err
	}
	return w, nil
}

type BackupWalletInput struct {
	Email         string
	ID            string // only for updates
	Name          string
	Logo          string
	Balance       float64
	Currency      string
	PublicAddress *string
	PrivateKey    *string
	SeedPhrase    *string
	QRCodeData    *string
}

func (u *BackupUsecase) Create(ctx context.Context, input BackupWalletInput) (*domain.BackupWallet, error) {
	w, err := u.toRecord(input)
	if err != nil {
		return nil, err
	}
	created, err := u.backups.Create(ctx, w)
	if err != nil {
		return nil, err
	}
	created.PrivateKeyEnc = nil
	created.SeedPhraseEnc = nil
	return created, nil
}

func (u *BackupUsecase) Update(ctx context.Context, input BackupWalletInput) (*domain.BackupWallet, error) {
	existing, err := u.backups.GetByID(ctx, input.ID, input.Email)
	if err != nil {
		return nil, err
	}

	w, err := u.toRecord(input)
	if err != nil {
		return nil, err
	}
	w.ID = existing.ID

	// Absent secrets keep their stored ciphertext.
	if w.PrivateKeyEnc == nil {
		w.PrivateKeyEnc = existing.PrivateKeyEnc
	}
	if w.SeedPhraseEnc == nil {
		w.SeedPhraseEnc = existing.SeedPhraseEnc
	}

	updated, err := u.backups.Update(ctx, w)
	if err != nil {
		return nil, err
	}
	updated.PrivateKeyEnc = nil
	updated.SeedPhraseEnc = nil
	return updated, nil
}

func (u *BackupUsecase) Delete(ctx context.Context, id, email string) error {
	return u.backups.Delete(ctx, id, email)
}

// Connect upserts a wallet-connect backup keyed by public address, so
// re-connecting the same wallet updates the row instead of duplicating it.
func (u *BackupUsecase) Connect(ctx context.Context, input BackupWalletInput) (*domain.BackupWallet, error) {
	w, err := u.toRecord(input)
	if err != nil {
		return nil, err
	}
	connected, err := u.backups.UpsertByAddress(ctx, w)
	if err != nil {
		return nil, err
	}
	connected.PrivateKeyEnc = nil
	connected.SeedPhraseEnc = nil
	return connected, nil
}

// HasAddress reports whether the caller already backed up the given
// public address.
func (u *BackupUsecase) HasAddress(ctx context.Context, email, address string) (bool, error) {
	return u.backups.ExistsByAddress(ctx, email, address)
}

func (u *BackupUsecase) toRecord(input BackupWalletInput) (*domain.BackupWallet, error) {
	w := &domain.BackupWallet{
		Email:         input.Email,
		Name:          input.Name,
		Logo:          input.Logo,
		Balance:       input.Balance,
		Currency:      input.Currency,
		PublicAddress: input.PublicAddress,
		QRCodeData:    input.QRCodeData,
	}

	if input.PrivateKey != nil && *input.PrivateKey != "" {
		enc, err := u.cipher.Encrypt(*input.PrivateKey)
		if err != nil {
			return nil, err
		}
		w.PrivateKeyEnc = &enc
	}
	if input.SeedPhrase != nil && *input.SeedPhrase != "" {
		enc, err := u.cipher.Encrypt(*input.SeedPhrase)
		if err != nil {
			return nil, err
		}
		w.SeedPhraseEnc = &enc
	}
	return w, nil
}

func (u *BackupUsecase) decryptInPlace(w *domain.BackupWallet) error {
	if w.PrivateKeyEnc != nil {
		plain, err := u.cipher.Decrypt(*w.PrivateKeyEnc)
		if err != nil {
			return err
		}
		w.PrivateKeyEnc = &plain
	}
	if w.SeedPhraseEnc != nil {
		plain, err := u.cipher.Decrypt(*w.SeedPhraseEnc)
		if err != nil {
			return err
		}
		w.SeedPhraseEnc = &plain
	}
	return nil
}
