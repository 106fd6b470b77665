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
)

type walletUsecaser interface {
	Balance(ctx context.Context, email string) (*domain.Wallet, error)
	Profile(ctx context.Context, email string) (*domain.User, error)
}

type WalletHandler struct {
	wallets walletUsecaser
	logger  *slog.Logger
}

func NewWalletHandler(wallets walletUsecaser, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{wallets: wallets, logger: logger.With("component", "wallet_handler")}
}

type walletResponse struct {
	WalletID string  `json:"wallet_id"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

// GET /api/wallet
func (h *WalletHandler) Balance(c *gin.Context) {
	email := c.GetString(middleware.ContextEmail)

	w, err := h.wallets.Balance(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errWalletNotFound})
			return
		}
		h.logger.Error("wallet balance", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"wallet":  walletResponse{WalletID: w.WalletID, Balance: w.Balance, Currency: w.Currency},
	})
}

type profileResponse struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// GET /api/profile
// Credential fields (password hash, pending code) never leave the server.
func (h *WalletHandler) Profile(c *gin.Context) {
	email := c.GetString(middleware.ContextEmail)

	user, err := h.wallets.Profile(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthenticated})
			return
		}
		h.logger.Error("profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": profileResponse{
			Email:      user.Email,
			Name:       user.Name,
			IsVerified: user.IsVerified,
			CreatedAt:  user.CreatedAt,
		},
	})
}
