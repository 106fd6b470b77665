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

type tradingUsecaser interface {
	Packages() []domain.TradingPackage
	Lock(ctx context.Context, email, packageID string, amount float64) (*domain.LockedFund, error)
	Locked(ctx context.Context, email string) (*usecase.LockedSummary, error)
}

type TradingHandler struct {
	trading tradingUsecaser
	logger  *slog.Logger
}

func NewTradingHandler(trading tradingUsecaser, logger *slog.Logger) *TradingHandler {
	return &TradingHandler{trading: trading, logger: logger.With("component", "trading_handler")}
}

type lockedFundResponse struct {
	ID             string    `json:"id"`
	PackageID      string    `json:"package_id"`
	PackageName    string    `json:"package_name"`
	Amount         float64   `json:"amount"`
	ExpectedReturn float64   `json:"expected_return"`
	CurrentReturn  float64   `json:"current_return"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

func toLockedFundResponse(f *domain.LockedFund) lockedFundResponse {
	return lockedFundResponse{
		ID:             f.ID,
		PackageID:      f.PackageID,
		PackageName:    f.PackageName,
		Amount:         f.Amount,
		ExpectedReturn: f.ExpectedReturn,
		CurrentReturn:  f.CurrentReturn,
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
	}
}

type tradingPackageResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	DurationDays int     `json:"duration_days"`
	ReturnRate   float64 `json:"return_rate"`
	MinAmount    float64 `json:"min_amount"`
	MaxAmount    float64 `json:"max_amount"`
}

// GET /api/trading/packages
func (h *TradingHandler) Packages(c *gin.Context) {
	pkgs := h.trading.Packages()
	out := make([]tradingPackageResponse, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, tradingPackageResponse{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			DurationDays: p.DurationDays,
			ReturnRate:   p.ReturnRate,
			MinAmount:    p.MinAmount,
			MaxAmount:    p.MaxAmount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "packages": out})
}

type lockFundsRequest struct {
	PackageID string  `json:"package_id" binding:"required"`
	Amount    float64 `json:"amount"     binding:"required,gt=0"`
}

// POST /api/trading/lock
func (h *TradingHandler) Lock(c *gin.Context) {
	var req lockFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	f, err := h.trading.Lock(c.Request.Context(), c.GetString(middleware.ContextEmail), req.PackageID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPackageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errPackageNotFound})
		case errors.Is(err, domain.ErrAmountOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errAmountOutOfRange})
		case errors.Is(err, domain.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": errInsufficientFunds})
		default:
			h.logger.Error("lock funds", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "locked_fund": toLockedFundResponse(f)})
}

// GET /api/trading/locked
func (h *TradingHandler) Locked(c *gin.Context) {
	s, err := h.trading.Locked(c.Request.Context(), c.GetString(middleware.ContextEmail))
	if err != nil {
		h.logger.Error("list locked funds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	out := make([]lockedFundResponse, 0, len(s.Funds))
	for _, f := range s.Funds {
		out = append(out, toLockedFundResponse(f))
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"locked_funds":  out,
		"total_locked":  s.TotalLocked,
		"total_returns": s.TotalReturns,
	})
}
