package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	SessionSecret string `env:"SESSION_SECRET,required" validate:"required,min=32"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/api/auth/google/callback"`

	// 32 bytes, base64-encoded. Encrypts backup-wallet secrets at rest.
	BackupEncryptionKey string `env:"BACKUP_ENCRYPTION_KEY,required" validate:"required"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	RatesCacheTTLSec       int `env:"RATES_CACHE_TTL_SEC" envDefault:"60" validate:"min=1,max=3600"`
	DepositConfirmDelaySec int `env:"DEPOSIT_CONFIRM_DELAY_SEC" envDefault:"30" validate:"min=1,max=86400"`

	// Worker loop schedules (standard 5-field cron expressions).
	AccrualCron       string `env:"ACCRUAL_CRON" envDefault:"0 * * * *"`
	OTPPurgeCron      string `env:"OTP_PURGE_CRON" envDefault:"*/15 * * * *"`
	DepositExpireCron string `env:"DEPOSIT_EXPIRE_CRON" envDefault:"30 * * * *"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	for _, expr := range []string{cfg.AccrualCron, cfg.OTPPurgeCron, cfg.DepositExpireCron} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
		}
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
