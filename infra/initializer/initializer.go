package initializer

import (
	"context"
	"fmt"
	"io"
	"os"

	infra_cache "github.com/amirasaad/remitquote/infra/cache"
	infra_provider "github.com/amirasaad/remitquote/infra/provider"
	currencyfixtures "github.com/amirasaad/remitquote/internal/fixtures/currency"
	pricingfixtures "github.com/amirasaad/remitquote/internal/fixtures/pricing"
	"github.com/amirasaad/remitquote/pkg/app"
	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/amirasaad/remitquote/pkg/currency"
	"github.com/amirasaad/remitquote/pkg/provider"
)

// Option adjusts how dependencies are built.
type Option func(*options)

type options struct {
	logOutput io.Writer
	source    provider.RateSource
}

// WithLogOutput sends process logs to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithRateSource replaces the live rate source.
func WithRateSource(src provider.RateSource) Option {
	return func(o *options) { o.source = src }
}

// InitializeDependencies initializes all the application dependencies.
// The returned cleanup releases external connections.
func InitializeDependencies(cfg *config.App, opts ...Option) (
	deps *app.Deps,
	cleanup func(),
	err error,
) {
	o := options{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	logger := setupLogger(cfg.Log, o.logOutput)
	deps = &app.Deps{Logger: logger}
	cleanup = func() {}

	deps.CurrencyRegistry, err = currencyfixtures.LoadRegistry(cfg.CurrenciesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load currencies: %w", err)
	}
	logger.Info("Loaded currency registry", "count", deps.CurrencyRegistry.Count(), "file", cfg.CurrenciesFile)

	deps.Pricing, err = pricingfixtures.LoadTable(cfg.PricingFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pricing table: %w", err)
	}
	for _, code := range deps.CurrencyRegistry.Codes() {
		if _, ok := deps.Pricing.SeedRate(code); !ok {
			logger.Warn("Currency has no seed rate; quotes will fail when live rates are down", "code", code)
		}
	}
	if _, ok := deps.Pricing.SeedRate(currency.ReferenceCurrency); !ok {
		return nil, nil, fmt.Errorf("reference currency %s has no seed rate", currency.ReferenceCurrency)
	}

	source := o.source
	if source == nil {
		source = infra_provider.NewChain(logger,
			infra_provider.NewOpenExchangeRates(*cfg.OpenExchangeRates, logger),
			infra_provider.NewExchangeRateAPI(*cfg.ExchangeRateAPI, logger),
		)
	}
	if !source.Enabled() {
		logger.Warn("Live rate source disabled; quotes use seed rates", "source", source.Name())
	}

	cacheOpts := infra_cache.Options{
		TTL:             cfg.Rates.TTL,
		FailureCooldown: cfg.Rates.FailureCooldown,
		FetchTimeout:    cfg.Rates.FetchTimeout,
	}
	if cfg.Redis.URL != "" {
		store, err := infra_cache.NewRedisSnapshotStoreFromConfig(cfg.Redis, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Redis snapshot store: %w", err)
		}
		cacheOpts.Store = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close Redis client", "error", err)
			}
		}
	}

	rateCache := infra_cache.NewRateCache(source, deps.Pricing.SeedRates(), cacheOpts, logger)
	warmCtx, cancel := context.WithTimeout(context.Background(), cfg.Rates.FetchTimeout)
	defer cancel()
	if err := rateCache.Warm(warmCtx); err != nil {
		logger.Warn("Failed to warm rate cache from store", "error", err)
	}
	deps.Rates = rateCache

	logger.Info("Dependencies initialized",
		"live_source", source.Name(),
		"live_enabled", source.Enabled(),
		"shared_store", cfg.Redis.URL != "",
	)
	return deps, cleanup, nil
}
