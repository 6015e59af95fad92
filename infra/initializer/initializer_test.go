package initializer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct{}

func (stubSource) Name() string  { return "stub" }
func (stubSource) Enabled() bool { return false }
func (stubSource) Latest(context.Context) (map[string]float64, error) {
	return nil, nil
}

func testConfig(t *testing.T) *config.App {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestInitializeDependencies_Defaults(t *testing.T) {
	cfg := testConfig(t)

	deps, cleanup, err := InitializeDependencies(cfg, WithLogOutput(io.Discard), WithRateSource(stubSource{}))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	require.NotNil(t, deps.Logger)
	assert.True(t, deps.CurrencyRegistry.IsSupported("USD"))
	assert.True(t, deps.CurrencyRegistry.IsSupported("BRL"))

	usdBrl := deps.Pricing.CorridorRule("USD", "BRL")
	assert.Equal(t, "USD", usdBrl.From)

	status := deps.Rates.Status()
	assert.Equal(t, "stub", status.Source)
	assert.False(t, status.Enabled)
	assert.False(t, status.IsLive)

	q, ok := deps.Rates.MidMarketRate(context.Background(), "USD", "EUR")
	require.True(t, ok)
	assert.True(t, q.Stale)
	assert.Positive(t, q.Rate)
}

func TestInitializeDependencies_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.URL = "redis://" + mr.Addr()

	deps, cleanup, err := InitializeDependencies(cfg, WithLogOutput(io.Discard), WithRateSource(stubSource{}))
	require.NoError(t, err)
	require.NotNil(t, deps.Rates)
	cleanup()
}

func TestInitializeDependencies_Errors(t *testing.T) {
	t.Run("missing pricing file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.PricingFile = filepath.Join(t.TempDir(), "nope.yaml")
		_, _, err := InitializeDependencies(cfg, WithLogOutput(io.Discard), WithRateSource(stubSource{}))
		assert.ErrorContains(t, err, "pricing")
	})

	t.Run("invalid pricing file", func(t *testing.T) {
		cfg := testConfig(t)
		path := filepath.Join(t.TempDir(), "pricing.yaml")
		require.NoError(t, os.WriteFile(path, []byte("default:\n  fee:\n    type: bogus\n"), 0o600))
		cfg.PricingFile = path
		_, _, err := InitializeDependencies(cfg, WithLogOutput(io.Discard), WithRateSource(stubSource{}))
		assert.Error(t, err)
	})

	t.Run("reference currency without seed rate", func(t *testing.T) {
		cfg := testConfig(t)
		path := filepath.Join(t.TempDir(), "pricing.yaml")
		doc := "default:\n  fee: { type: fixed, value: 1, min: 1, max: 1 }\n" +
			"  etaDays: { min: 1, max: 2 }\nseedRates:\n  EUR: 0.9\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
		cfg.PricingFile = path
		_, _, err := InitializeDependencies(cfg, WithLogOutput(io.Discard), WithRateSource(stubSource{}))
		assert.ErrorContains(t, err, "reference currency USD")
	})

	t.Run("bad redis url", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Redis.URL = "not-a-url://"
		_, _, err := InitializeDependencies(cfg, WithLogOutput(io.Discard), WithRateSource(stubSource{}))
		assert.Error(t, err)
	})
}

func TestSetupLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "logfmt", "text"} {
		t.Run(format, func(t *testing.T) {
			logger := setupLogger(&config.Log{Format: format, Prefix: "[test]"}, io.Discard)
			require.NotNil(t, logger)
			logger.Info("hello", "corridor", "USD->BRL")
		})
	}
}
