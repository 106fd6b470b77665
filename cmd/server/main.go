package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/financex/financex/config"
	"github.com/financex/financex/internal/chain"
	"github.com/financex/financex/internal/email"
	"github.com/financex/financex/internal/health"
	"github.com/financex/financex/internal/infrastructure/postgres"
	ctxlog "github.com/financex/financex/internal/log"
	"github.com/financex/financex/internal/metrics"
	"github.com/financex/financex/internal/oauth"
	"github.com/financex/financex/internal/rates"
	"github.com/financex/financex/internal/secrets"
	"github.com/financex/financex/internal/session"
	"github.com/financex/financex/internal/support"
	httptransport "github.com/financex/financex/internal/transport/http"
	"github.com/financex/financex/internal/transport/http/handler"
	"github.com/financex/financex/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	sessions := session.NewManager([]byte(cfg.SessionSecret))
	cipher, err := secrets.NewCipherFromBase64(cfg.BackupEncryptionKey)
	if err != nil {
		stop()
		log.Fatalf("backup encryption key: %v", err)
	}

	userRepo := postgres.NewUserRepository(pool)
	walletRepo := postgres.NewWalletRepository(pool)
	backupRepo := postgres.NewBackupWalletRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	lockedFundRepo := postgres.NewLockedFundRepository(pool)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	ratesProvider := rates.WithCache(rates.StaticProvider{}, time.Duration(cfg.RatesCacheTTLSec)*time.Second)
	watcher := chain.NewSimulator(time.Duration(cfg.DepositConfirmDelaySec) * time.Second)
	responder := support.NewResponder(cfg.Env, cfg.GeminiAPIKey, cfg.GeminiModel)

	authUsecase := usecase.NewAuthUsecase(userRepo, sessions, sender, google)
	walletUsecase := usecase.NewWalletUsecase(walletRepo, userRepo)
	paymentUsecase := usecase.NewPaymentUsecase(transactionRepo, ratesProvider, watcher)
	backupUsecase := usecase.NewBackupUsecase(backupRepo, cipher)
	supportUsecase := usecase.NewSupportUsecase(ticketRepo, responder)
	tradingUsecase := usecase.NewTradingUsecase(lockedFundRepo)

	cookies := handler.NewCookieWriter(sessions.TTL(), cfg.Env == "production")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, sessions, httptransport.Handlers{
			Auth:    handler.NewAuthHandler(authUsecase, cookies, logger),
			Wallet:  handler.NewWalletHandler(walletUsecase, logger),
			Payment: handler.NewPaymentHandler(paymentUsecase, logger),
			Backup:  handler.NewBackupHandler(backupUsecase, logger),
			Support: handler.NewSupportHandler(supportUsecase, logger),
			Trading: handler.NewTradingHandler(tradingUsecase, logger),
		}),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
