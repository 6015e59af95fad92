package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/amirasaad/remitquote/pkg/currency"
	"github.com/amirasaad/remitquote/pkg/provider"
)

const (
	// DefaultExchangeRateAPIURL is the v6 root of exchangerate-api.com
	DefaultExchangeRateAPIURL = "https://v6.exchangerate-api.com/v6"
	exchangeRateAPIName       = "exchangerate-api"
)

// ExchangeRateAPI implements provider.RateSource for exchangerate-api.com.
type ExchangeRateAPI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// exchangeRateAPIResponseV6 represents the v6 latest response.
// See: https://www.exchangerate-api.com/docs/standard-requests
// Example: { "result": "success", "time_last_update_unix": 1585267200, "base_code": "USD", "conversion_rates": {...} }
type exchangeRateAPIResponseV6 struct {
	Result             string             `json:"result"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	BaseCode           string             `json:"base_code"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	ErrorType          string             `json:"error-type,omitempty"`
}

// NewExchangeRateAPI creates a source from config. An empty key disables it.
func NewExchangeRateAPI(cfg config.ExchangeRateAPI, logger *slog.Logger) *ExchangeRateAPI {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = DefaultExchangeRateAPIURL
	}
	return &ExchangeRateAPI{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logger.With("source", exchangeRateAPIName),
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func (p *ExchangeRateAPI) WithHTTPClient(c *http.Client) *ExchangeRateAPI {
	p.httpClient = c
	return p
}

// Name implements provider.RateSource.
func (p *ExchangeRateAPI) Name() string {
	return exchangeRateAPIName
}

// Enabled implements provider.RateSource.
func (p *ExchangeRateAPI) Enabled() bool {
	return p.apiKey != ""
}

// Latest implements provider.RateSource. Rates are requested against the
// reference currency so they line up with the seed table.
func (p *ExchangeRateAPI) Latest(ctx context.Context) (map[string]float64, error) {
	if !p.Enabled() {
		return nil, provider.ErrSourceDisabled
	}

	endpoint, err := url.JoinPath(p.baseURL, p.apiKey, "latest", currency.ReferenceCurrency)
	if err != nil {
		return nil, fmt.Errorf("invalid rates url: %w", err)
	}

	start := time.Now()
	var apiResp exchangeRateAPIResponseV6
	if err := getJSON(ctx, p.httpClient, endpoint, nil, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Result != "success" {
		return nil, fmt.Errorf("API returned result=%s: %s", apiResp.Result, apiResp.ErrorType)
	}
	if apiResp.BaseCode != "" && apiResp.BaseCode != currency.ReferenceCurrency {
		return nil, fmt.Errorf("%w: base %s", provider.ErrMalformedPayload, apiResp.BaseCode)
	}
	if err := validateRates(apiResp.ConversionRates); err != nil {
		return nil, err
	}

	p.logger.Debug("Fetched live rates",
		"base", apiResp.BaseCode,
		"count", len(apiResp.ConversionRates),
		"duration", time.Since(start),
	)
	return apiResp.ConversionRates, nil
}
