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

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/financex/financex/config"
	"github.com/financex/financex/internal/health"
	"github.com/financex/financex/internal/infrastructure/postgres"
	ctxlog "github.com/financex/financex/internal/log"
	"github.com/financex/financex/internal/metrics"
	"github.com/financex/financex/internal/worker"
)

// Crypto deposits that stay pending this long are considered abandoned.
const depositStaleAfter = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	userRepo := postgres.NewUserRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	lockedFundRepo := postgres.NewLockedFundRepository(pool)

	accrual, err := worker.NewAccrual(lockedFundRepo, cfg.AccrualCron, logger)
	if err != nil {
		stop()
		log.Fatalf("accrual loop: %v", err)
	}
	go accrual.Start(ctx)

	otpPurge, err := worker.NewOTPPurge(userRepo, cfg.OTPPurgeCron, logger)
	if err != nil {
		stop()
		log.Fatalf("otp purge loop: %v", err)
	}
	go otpPurge.Start(ctx)

	depositExpiry, err := worker.NewDepositExpiry(transactionRepo, cfg.DepositExpireCron, depositStaleAfter, logger)
	if err != nil {
		stop()
		log.Fatalf("deposit expiry loop: %v", err)
	}
	go depositExpiry.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("worker shut down")
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
