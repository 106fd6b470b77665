package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/metrics"
	"github.com/financex/financex/internal/rates"
	"github.com/financex/financex/internal/repository"
	"github.com/financex/financex/internal/transport/http/middleware"
	"github.com/financex/financex/internal/usecase"
)

type paymentUsecaser interface {
	Rates(ctx context.Context) (map[string]rates.Rate, error)
	ProcessFiat(ctx context.Context, input usecase.ProcessFiatInput) (*domain.Transaction, string, error)
	CheckDeposit(ctx context.Context, input usecase.CheckDepositInput) (*domain.Transaction, error)
	History(ctx context.Context, input repository.ListTransactionsInput) ([]*domain.Transaction, int, error)
	GetTransaction(ctx context.Context, id, email string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	HandlePayPalWebhook(ctx context.Context, event usecase.PayPalEvent) error
}

type PaymentHandler struct {
	payments paymentUsecaser
	logger   *slog.Logger
}

type transactionResponse struct {
	ID            string                   `json:"id"`
	Type          domain.TransactionType   `json:"type"`
	Method        string                   `json:"method"`
	Amount        float64                  `json:"amount"`
	Currency      string                   `json:"currency"`
	USDValue      *float64                 `json:"usd_value,omitempty"`
	Status        domain.TransactionStatus `json:"status"`
	TxHash        *string                  `json:"tx_hash,omitempty"`
	Confirmations int                      `json:"confirmations"`
	CreatedAt     time.Time                `json:"created_at"`
	CompletedAt   *time.Time               `json:"completed_at,omitempty"`
}

func toTransactionResponse(t *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Type:          t.Type,
		Method:        t.Method,
		Amount:        t.Amount,
		Currency:      t.Currency,
		USDValue:      t.USDValue,
		Status:        t.Status,
		TxHash:        t.TxHash,
		Confirmations: t.Confirmations,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

func NewPaymentHandler(payments paymentUsecaser, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger.With("component", "payment_handler")}
}

// GET /api/payments/rates
func (h *PaymentHandler) Rates(c *gin.Context) {
	table, err := h.payments.Rates(c.Request.Context())
	if err != nil {
		h.logger.Error("rates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rates": table})
}

type processFiatRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required,oneof=card paypal"`
}

// POST /api/payments/fiat
func (h *PaymentHandler) ProcessFiat(c *gin.Context) {
	var req processFiatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	tx, redirectURL, err := h.payments.ProcessFiat(c.Request.Context(), usecase.ProcessFiatInput{
		Email:  c.GetString(middleware.ContextEmail),
		Amount: req.Amount,
		Method: req.Method,
	})
	if err != nil {
		h.logger.Error("process fiat", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	if tx.Status == domain.TransactionCompleted {
		metrics.DepositsSettledTotal.WithLabelValues(tx.Method).Inc()
	}

	resp := gin.H{"success": true, "transaction": toTransactionResponse(tx)}
	if redirectURL != "" {
		resp["redirect_url"] = redirectURL
	}
	c.JSON(http.StatusCreated, resp)
}

type checkDepositRequest struct {
	ID         string `json:"id"          binding:"required"`
	CryptoType string `json:"crypto_type" binding:"required,oneof=btc eth usdt sol"`
	Address    string `json:"address"     binding:"required"`
}

// POST /api/payments/crypto/check
func (h *PaymentHandler) CheckDeposit(c *gin.Context) {
	var req checkDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	tx, err := h.payments.CheckDeposit(c.Request.Context(), usecase.CheckDepositInput{
		Email:      c.GetString(middleware.ContextEmail),
		ID:         req.ID,
		CryptoType: req.CryptoType,
		Address:    req.Address,
	})
	if err != nil {
		metrics.DepositChecksTotal.WithLabelValues("error").Inc()
		h.logger.Error("check deposit", "deposit_id", req.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	metrics.DepositChecksTotal.WithLabelValues(string(tx.Status)).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": toTransactionResponse(tx)})
}

// GET /api/transactions?type=&status=&page=&limit=
func (h *PaymentHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	txs, total, err := h.payments.History(c.Request.Context(), repository.ListTransactionsInput{
		Email:  c.GetString(middleware.ContextEmail),
		Type:   domain.TransactionType(c.Query("type")),
		Status: domain.TransactionStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("transaction history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": out, "total": total})
}

// GET /api/transactions/:id
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	tx, err := h.payments.GetTransaction(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextEmail))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errTxNotFound})
			return
		}
		h.logger.Error("get transaction", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": toTransactionResponse(tx)})
}

type updateTransactionRequest struct {
	Status domain.TransactionStatus `json:"status"  binding:"required,oneof=pending completed failed"`
	Amount *float64                 `json:"amount"  binding:"omitempty,gt=0"`
	TxHash *string                  `json:"tx_hash"`
}

// PATCH /api/transactions/:id
func (h *PaymentHandler) UpdateTransaction(c *gin.Context) {
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	tx, err := h.payments.UpdateTransaction(c.Request.Context(), usecase.UpdateTransactionInput{
		Email:  c.GetString(middleware.ContextEmail),
		ID:     c.Param("id"),
		Status: req.Status,
		Amount: req.Amount,
		TxHash: req.TxHash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errTxNotFound})
			return
		}
		h.logger.Error("update transaction", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": toTransactionResponse(tx)})
}

type paypalWebhookRequest struct {
	EventType string `json:"event_type" binding:"required"`
	Resource  struct {
		ID     string `json:"id"`
		Amount struct {
			Value string `json:"value"`
		} `json:"amount"`
		CustomID string `json:"custom_id"` // carries the account email
	} `json:"resource"`
}

// POST /api/webhooks/paypal
// Webhooks always acknowledge with 200 once parsed; PayPal retries on 5xx.
func (h *PaymentHandler) PayPalWebhook(c *gin.Context) {
	var req paypalWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	amount, err := strconv.ParseFloat(req.Resource.Amount.Value, 64)
	if err != nil && req.EventType == "PAYMENT.CAPTURE.COMPLETED" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid amount"})
		return
	}

	err = h.payments.HandlePayPalWebhook(c.Request.Context(), usecase.PayPalEvent{
		EventType: req.EventType,
		CaptureID: req.Resource.ID,
		Email:     req.Resource.CustomID,
		Amount:    amount,
	})
	if err != nil {
		h.logger.Error("paypal webhook", "event", req.EventType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	if req.EventType == "PAYMENT.CAPTURE.COMPLETED" {
		metrics.DepositsSettledTotal.WithLabelValues("paypal").Inc()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
