// Package testutils builds a fully wired HTTP app for handler tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	currencyfixtures "github.com/amirasaad/remitquote/internal/fixtures/currency"
	pricingfixtures "github.com/amirasaad/remitquote/internal/fixtures/pricing"
	"github.com/amirasaad/remitquote/pkg/app"
	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/amirasaad/remitquote/pkg/provider"
	"github.com/amirasaad/remitquote/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

// StaticRates is a RateCache over a fixed table of units per USD.
// Setting Panic makes every lookup panic.
type StaticRates struct {
	mu        sync.RWMutex
	rates     map[string]float64
	stale     bool
	updatedAt time.Time
	Panic     bool
}

// NewStaticRates returns live, fresh rates.
func NewStaticRates(rates map[string]float64) *StaticRates {
	return &StaticRates{
		rates:     rates,
		updatedAt: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

// SetStale marks the rates as served from an old snapshot.
func (s *StaticRates) SetStale(stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = stale
}

func (s *StaticRates) MidMarketRate(_ context.Context, from, to string) (provider.RateQuote, bool) {
	if s.Panic {
		panic("rate table exploded")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, okFrom := s.rates[from]
	t, okTo := s.rates[to]
	if !okFrom || !okTo {
		return provider.RateQuote{}, false
	}
	return provider.RateQuote{Rate: t / f, Stale: s.stale, UpdatedAt: s.updatedAt, IsLive: true}, true
}

func (s *StaticRates) Status() provider.RateStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fetchedAt := s.updatedAt
	return provider.RateStatus{
		Source:     "static",
		Enabled:    true,
		IsLive:     true,
		Stale:      s.stale,
		FetchedAt:  &fetchedAt,
		Currencies: len(s.rates),
	}
}

// DefaultRates mirrors the seed table minus ARS so that corridors
// touching it have no rate.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"USD": 1,
		"EUR": 0.952,
		"GBP": 0.794,
		"CNY": 7.25,
		"CAD": 1.36,
		"TRY": 36.5,
		"BRL": 5.8,
		"MXN": 20.5,
		"COP": 4200,
	}
}

// TestConfig returns the defaults the server runs with, minus any environment.
func TestConfig() *config.App {
	return &config.App{
		Env:    "test",
		Server: &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:    &config.Log{Format: "text"},
		Rates: &config.Rates{
			TTL:             10 * time.Minute,
			FailureCooldown: time.Minute,
			FetchTimeout:    5 * time.Second,
		},
		OpenExchangeRates: &config.OpenExchangeRates{},
		ExchangeRateAPI:   &config.ExchangeRateAPI{},
		Quote: &config.Quote{
			MaxAmount:       10_000_000,
			VolumeThreshold: 10_000,
		},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Redis:     &config.Redis{},
	}
}

// APITestSuite wires the real handlers over fixture data and StaticRates.
type APITestSuite struct {
	suite.Suite
	Cfg   *config.App
	Rates *StaticRates
	App   *fiber.App
}

// SetupTest builds a fresh app per test so rate limit counters do not leak.
func (s *APITestSuite) SetupTest() {
	if s.Cfg == nil {
		s.Cfg = TestConfig()
	}
	s.Rates = NewStaticRates(DefaultRates())
	s.App = s.BuildApp(s.Cfg)
}

// BuildApp wires an app for cfg over the suite's rates.
func (s *APITestSuite) BuildApp(cfg *config.App) *fiber.App {
	registry, err := currencyfixtures.LoadRegistry("")
	s.Require().NoError(err)
	table, err := pricingfixtures.LoadTable("")
	s.Require().NoError(err)

	deps := &app.Deps{
		CurrencyRegistry: registry,
		Pricing:          table,
		Rates:            s.Rates,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return webapi.SetupApp(app.New(deps, cfg))
}

// MakeRequest sends a request through the app. Header pairs are key, value.
func (s *APITestSuite) MakeRequest(method, path, body string, headers ...string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.App.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// DecodeBody reads resp's JSON body into a value of type T.
func DecodeBody[T any](s *APITestSuite, resp *http.Response) T {
	defer resp.Body.Close() //nolint:errcheck
	var out T
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}
