package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"

	"github.com/financex/financex/internal/session"
	"github.com/financex/financex/internal/transport/http/handler"
	"github.com/financex/financex/internal/transport/http/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Wallet  *handler.WalletHandler
	Payment *handler.PaymentHandler
	Backup  *handler.BackupHandler
	Support *handler.SupportHandler
	Trading *handler.TradingHandler
}

func NewRouter(logger *slog.Logger, sessions *session.Manager, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	api := r.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/session", h.Auth.Session)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/google", h.Auth.GoogleRedirect)
	auth.GET("/google/callback", h.Auth.GoogleCallback)

	// Verification routes need a session but not a verified one; the OTP
	// handlers read the cookie themselves to re-sign it.
	auth.POST("/verify-otp", h.Auth.VerifyOTP)
	auth.POST("/resend-otp", h.Auth.ResendOTP)

	api.POST("/webhooks/paypal", h.Payment.PayPalWebhook)

	// Everything below requires a verified session.
	verified := api.Group("", middleware.Session(sessions), middleware.RequireVerified())

	verified.GET("/wallet", h.Wallet.Balance)
	verified.GET("/profile", h.Wallet.Profile)

	payments := verified.Group("/payments")
	payments.GET("/rates", h.Payment.Rates)
	payments.POST("/fiat", h.Payment.ProcessFiat)
	payments.POST("/crypto/check", h.Payment.CheckDeposit)

	verified.GET("/transactions", h.Payment.History)
	verified.GET("/transactions/:id", h.Payment.GetTransaction)
	verified.PATCH("/transactions/:id", h.Payment.UpdateTransaction)

	backups := verified.Group("/backup-wallets")
	backups.GET("", h.Backup.List)
	backups.POST("", h.Backup.Create)
	backups.POST("/connect", h.Backup.Connect)
	backups.GET("/check-address", h.Backup.CheckAddress)
	backups.GET("/:id", h.Backup.Get)
	backups.PUT("/:id", h.Backup.Update)
	backups.DELETE("/:id", h.Backup.Delete)

	support := verified.Group("/support")
	support.GET("/tickets", h.Support.ListTickets)
	support.POST("/tickets", h.Support.CreateTicket)
	support.GET("/tickets/:id", h.Support.GetTicket)
	support.PATCH("/tickets/:id", h.Support.UpdateTicket)
	support.DELETE("/tickets/:id", h.Support.DeleteTicket)
	support.POST("/tickets/:id/messages", h.Support.AddMessage)
	support.POST("/chat", h.Support.Chat)

	trading := verified.Group("/trading")
	trading.GET("/packages", h.Trading.Packages)
	trading.POST("/lock", h.Trading.Lock)
	trading.GET("/locked", h.Trading.Locked)

	return r
}
