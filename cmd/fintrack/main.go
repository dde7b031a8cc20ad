package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/boddenberg/fintrack-go/internal/cli"
	"github.com/boddenberg/fintrack-go/internal/config"
	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/infra/cache"
	"github.com/boddenberg/fintrack-go/internal/infra/client"
	"github.com/boddenberg/fintrack-go/internal/infra/observability"
	"github.com/boddenberg/fintrack-go/internal/infra/resilience"
	"github.com/boddenberg/fintrack-go/internal/infra/sqlite"
	"github.com/boddenberg/fintrack-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: read .env: %v\n", err)
		return 1
	}

	// --- Config ---
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Debug("configuration loaded",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Float64("rate_limit", cfg.RateLimit),
		zap.Bool("breaker_enabled", cfg.BreakerEnabled),
		zap.String("session_db", cfg.SessionDB),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "fintrack-cli")
	if err != nil {
		logger.Error("failed to init tracer", zap.Error(err))
		return 1
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Session store ---
	store, err := sqlite.Open(cfg.SessionDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open session store: %v\n", err)
		return 1
	}
	defer store.Close()

	// --- HTTP transport (resilience is layered here, never inside the client) ---
	breakerName := ""
	if cfg.BreakerEnabled {
		breakerName = "finance-api"
	}
	transport := resilience.NewTransport(http.DefaultTransport, resilience.TransportConfig{
		BreakerName:    breakerName,
		MaxConcurrency: cfg.MaxConcurrency,
		RateLimit:      cfg.RateLimit,
	})
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout, Transport: transport}

	// --- API client ---
	txCache := cache.NewCollection[[]domain.Transaction](cfg.CacheTTL, nil)
	api := client.New(httpClient, cfg.APIBaseURL, txCache, metrics, logger)

	// --- Services ---
	session := service.NewSessionService(api, store, logger)
	if _, err := session.Restore(ctx); err != nil {
		logger.Warn("failed to restore session", zap.Error(err))
	}
	dashboard := service.NewDashboardService(api, logger)

	app := cli.New(cli.Deps{
		API:       api,
		Session:   session,
		Dashboard: dashboard,
		Metrics:   metrics,
		Breaker:   transport,
		Retry: resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			ShouldRetry:    resilience.Retryable,
		},
		Logger: logger,
	})

	err = app.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, cli.ErrFailed):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
}
