package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/financex/financex/internal/health"
)

var (
	// Auth metrics

	SignupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "signups_total",
		Help:      "Total signup attempts, by outcome.",
	}, []string{"outcome"})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	VerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "verifications_total",
		Help:      "Total OTP verification attempts, by outcome.",
	}, []string{"outcome"})

	OTPEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "otp_emails_total",
		Help:      "Total verification emails requested, by outcome.",
	}, []string{"outcome"})

	// Payment metrics

	DepositChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "deposit_checks_total",
		Help:      "Crypto deposit polls, by resulting status.",
	}, []string{"status"})

	DepositsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "deposits_settled_total",
		Help:      "Deposits credited to wallets, by method.",
	}, []string{"method"})

	// Worker metrics

	AccrualCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "financex",
		Name:      "accrual_cycle_duration_seconds",
		Help:      "Time taken for one trading-returns accrual cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	AccruedPositionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "accrued_positions_total",
		Help:      "Locked-fund positions advanced by the accrual loop.",
	})

	ExpiredOTPsClearedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "expired_otps_cleared_total",
		Help:      "Verification codes purged after expiry.",
	})

	StaleDepositsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "stale_deposits_failed_total",
		Help:      "Pending deposits marked failed after the grace window.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "financex",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financex",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		SignupsTotal,
		LoginsTotal,
		VerificationsTotal,
		OTPEmailsTotal,
		DepositChecksTotal,
		DepositsSettledTotal,
		AccrualCycleDuration,
		AccruedPositionsTotal,
		ExpiredOTPsClearedTotal,
		StaleDepositsFailedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes on the
// internal port.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", checker.Livez)
	mux.HandleFunc("/readyz", checker.Readyz)
	return &http.Server{Addr: addr, Handler: mux}
}
