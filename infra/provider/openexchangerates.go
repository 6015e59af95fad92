package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/amirasaad/remitquote/pkg/currency"
	"github.com/amirasaad/remitquote/pkg/provider"
)

const (
	// DefaultOpenExchangeRatesURL is the latest-rates endpoint of openexchangerates.org
	DefaultOpenExchangeRatesURL = "https://openexchangerates.org/api/latest.json"
	openExchangeRatesName       = "openexchangerates"
)

// OpenExchangeRates implements provider.RateSource for openexchangerates.org.
type OpenExchangeRates struct {
	appID      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// openExchangeRatesResponse is the subset of the latest.json payload we read.
// Example: { "timestamp": 1449877801, "base": "USD", "rates": { "EUR": 0.913, ... } }
type openExchangeRatesResponse struct {
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
}

// NewOpenExchangeRates creates a source from config. An empty app id disables it.
func NewOpenExchangeRates(cfg config.OpenExchangeRates, logger *slog.Logger) *OpenExchangeRates {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = DefaultOpenExchangeRatesURL
	}
	return &OpenExchangeRates{
		appID:      cfg.AppID,
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logger.With("source", openExchangeRatesName),
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func (p *OpenExchangeRates) WithHTTPClient(c *http.Client) *OpenExchangeRates {
	p.httpClient = c
	return p
}

// Name implements provider.RateSource.
func (p *OpenExchangeRates) Name() string {
	return openExchangeRatesName
}

// Enabled implements provider.RateSource.
func (p *OpenExchangeRates) Enabled() bool {
	return p.appID != ""
}

// Latest implements provider.RateSource. The deadline comes from ctx.
func (p *OpenExchangeRates) Latest(ctx context.Context) (map[string]float64, error) {
	if !p.Enabled() {
		return nil, provider.ErrSourceDisabled
	}

	// The app id travels in a header so it never appears in a URL.
	header := http.Header{}
	header.Set("Authorization", "Token "+p.appID)

	start := time.Now()
	var apiResp openExchangeRatesResponse
	if err := getJSON(ctx, p.httpClient, p.baseURL, header, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Base != "" && apiResp.Base != currency.ReferenceCurrency {
		return nil, fmt.Errorf("%w: base %s", provider.ErrMalformedPayload, apiResp.Base)
	}
	if err := validateRates(apiResp.Rates); err != nil {
		return nil, err
	}

	p.logger.Debug("Fetched live rates",
		"base", apiResp.Base,
		"count", len(apiResp.Rates),
		"duration", time.Since(start),
	)
	return apiResp.Rates, nil
}
