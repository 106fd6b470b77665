package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/transport/http/middleware"
	"github.com/financex/financex/internal/usecase"
)

type backupUsecaser interface {
	List(ctx context.Context, email string) ([]*domain.BackupWallet, error)
	Get(ctx context.Context, id, email string) (*domain.BackupWallet, error)
	Create(ctx context.Context, input usecase.BackupWalletInput) (*domain.BackupWallet, error)
	Update(ctx context.Context, input usecase.BackupWalletInput) (*domain.BackupWallet, error)
	Delete(ctx context.Context, id, email string) error
	Connect(ctx context.Context, input usecase.BackupWalletInput) (*domain.BackupWallet, error)
	HasAddress(ctx context.Context, email, address string) (bool, error)
}

type BackupHandler struct {
	backups backupUsecaser
	logger  *slog.Logger
}

func NewBackupHandler(backups backupUsecaser, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{backups: backups, logger: logger.With("component", "backup_handler")}
}

type backupWalletResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Logo          string    `json:"logo"`
	Balance       float64   `json:"balance"`
	Currency      string    `json:"currency"`
	PublicAddress *string   `json:"public_address,omitempty"`
	PrivateKey    *string   `json:"private_key,omitempty"`
	SeedPhrase    *string   `json:"seed_phrase,omitempty"`
	QRCodeData    *string   `json:"qr_code_data,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// The usecase clears or decrypts the Enc fields before the wallet reaches
// this mapping; they are never ciphertext here.
func toBackupWalletResponse(w *domain.BackupWallet) backupWalletResponse {
	return backupWalletResponse{
		ID:            w.ID,
		Name:          w.Name,
		Logo:          w.Logo,
		Balance:       w.Balance,
		Currency:      w.Currency,
		PublicAddress: w.PublicAddress,
		PrivateKey:    w.PrivateKeyEnc,
		SeedPhrase:    w.SeedPhraseEnc,
		QRCodeData:    w.QRCodeData,
		CreatedAt:     w.CreatedAt,
	}
}

// GET /api/backup-wallets
func (h *BackupHandler) List(c *gin.Context) {
	wallets, err := h.backups.List(c.Request.Context(), c.GetString(middleware.ContextEmail))
	if err != nil {
		h.logger.Error("list backup wallets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	out := make([]backupWalletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toBackupWalletResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "wallets": out})
}

// GET /api/backup-wallets/:id
func (h *BackupHandler) Get(c *gin.Context) {
	w, err := h.backups.Get(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextEmail))
	if err != nil {
		if errors.Is(err, domain.ErrBackupWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errBackupNotFound})
			return
		}
		h.logger.Error("get backup wallet", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "wallet": toBackupWalletResponse(w)})
}

type backupWalletRequest struct {
	Name          string  `json:"name"           binding:"required,min=1,max=100"`
	Logo          string  `json:"logo"`
	Balance       float64 `json:"balance"        binding:"omitempty,gte=0"`
	Currency      string  `json:"currency"       binding:"required"`
	PublicAddress *string `json:"public_address"`
	PrivateKey    *string `json:"private_key"`
	SeedPhrase    *string `json:"seed_phrase"`
	QRCodeData    *string `json:"qr_code_data"`
}

func (r backupWalletRequest) toInput(email, id string) usecase.BackupWalletInput {
	return usecase.BackupWalletInput{
		Email:         email,
		ID:            id,
		Name:          r.Name,
		Logo:          r.Logo,
		Balance:       r.Balance,
		Currency:      r.Currency,
		PublicAddress: r.PublicAddress,
		PrivateKey:    r.PrivateKey,
		SeedPhrase:    r.SeedPhrase,
		QRCodeData:    r.QRCodeData,
	}
}

// POST /api/backup-wallets
func (h *BackupHandler) Create(c *gin.Context) {
	var req backupWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	w, err := h.backups.Create(c.Request.Context(), req.toInput(c.GetString(middleware.ContextEmail), ""))
	if err != nil {
		h.logger.Error("create backup wallet", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "wallet": toBackupWalletResponse(w)})
}

// PUT /api/backup-wallets/:id
func (h *BackupHandler) Update(c *gin.Context) {
	var req backupWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	w, err := h.backups.Update(c.Request.Context(), req.toInput(c.GetString(middleware.ContextEmail), c.Param("id")))
	if err != nil {
		if errors.Is(err, domain.ErrBackupWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errBackupNotFound})
			return
		}
		h.logger.Error("update backup wallet", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "wallet": toBackupWalletResponse(w)})
}

// DELETE /api/backup-wallets/:id
func (h *BackupHandler) Delete(c *gin.Context) {
	err := h.backups.Delete(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextEmail))
	if err != nil {
		if errors.Is(err, domain.ErrBackupWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errBackupNotFound})
			return
		}
		h.logger.Error("delete backup wallet", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Backup wallet removed"})
}

// GET /api/backup-wallets/check-address?address=...
func (h *BackupHandler) CheckAddress(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "address is required"})
		return
	}

	exists, err := h.backups.HasAddress(c.Request.Context(), c.GetString(middleware.ContextEmail), address)
	if err != nil {
		h.logger.Error("check backup address", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exists": exists})
}

type connectWalletRequest struct {
	Name          string  `json:"name"           binding:"required,min=1,max=100"`
	Logo          string  `json:"logo"`
	Balance       float64 `json:"balance"        binding:"omitempty,gte=0"`
	Currency      string  `json:"currency"       binding:"required"`
	PublicAddress string  `json:"public_address" binding:"required"`
	PrivateKey    *string `json:"private_key"`
	SeedPhrase    *string `json:"seed_phrase"`
	QRCodeData    *string `json:"qr_code_data"`
}

// POST /api/backup-wallets/connect
func (h *BackupHandler) Connect(c *gin.Context) {
	var req connectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	w, err := h.backups.Connect(c.Request.Context(), usecase.BackupWalletInput{
		Email:         c.GetString(middleware.ContextEmail),
		Name:          req.Name,
		Logo:          req.Logo,
		Balance:       req.Balance,
		Currency:      req.Currency,
		PublicAddress: &req.PublicAddress,
		PrivateKey:    req.PrivateKey,
		SeedPhrase:    req.SeedPhrase,
		QRCodeData:    req.QRCodeData,
	})
	if err != nil {
		h.logger.Error("connect backup wallet", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "wallet": toBackupWalletResponse(w)})
}
