package config

import (
	"fmt"
	"time"
)

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

// Addr returns the host:port the HTTP server listens on.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[remitquote]"`
}

// Rates controls the live-rate cache.
type Rates struct {
	TTL             time.Duration `envconfig:"TTL" default:"10m"`
	FailureCooldown time.Duration `envconfig:"FAILURE_COOLDOWN" default:"60s"`
	FetchTimeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"5s"`
}

// OpenExchangeRates configures the live rate source. An empty AppID disables it.
type OpenExchangeRates struct {
	AppID string `envconfig:"APP_ID"`
	URL   string `envconfig:"URL" default:"https://openexchangerates.org/api/latest.json"`
}

// ExchangeRateAPI configures the secondary live source, tried when the
// primary fails. An empty APIKey disables it.
type ExchangeRateAPI struct {
	APIKey string `envconfig:"API_KEY"`
	URL    string `envconfig:"URL" default:"https://v6.exchangerate-api.com/v6"`
}

type Quote struct {
	MaxAmount       float64 `envconfig:"MAX_AMOUNT" default:"10000000"`
	VolumeThreshold float64 `envconfig:"VOLUME_THRESHOLD" default:"10000"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Redis configures the shared rate snapshot store. An empty URL disables it.
type Redis struct {
	URL          string        `envconfig:"URL"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"remitquote:"`
	SnapshotTTL  time.Duration `envconfig:"SNAPSHOT_TTL" default:"24h"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type App struct {
	Env               string             `envconfig:"APP_ENV" default:"development"`
	Server            *Server            `envconfig:"SERVER"`
	Log               *Log               `envconfig:"LOG"`
	Rates             *Rates             `envconfig:"RATES"`
	OpenExchangeRates *OpenExchangeRates `envconfig:"OPEN_EXCHANGE_RATES"`
	ExchangeRateAPI   *ExchangeRateAPI   `envconfig:"EXCHANGE_RATE_API"`
	Quote             *Quote             `envconfig:"QUOTE"`
	RateLimit         *RateLimit         `envconfig:"RATE_LIMIT"`
	Redis             *Redis             `envconfig:"REDIS"`
	PricingFile       string             `envconfig:"PRICING_FILE"`
	CurrenciesFile    string             `envconfig:"CURRENCIES_FILE"`
}

// Validate checks values envconfig cannot express as tags.
func (a *App) Validate() error {
	if a.Quote.MaxAmount <= 0 {
		return fmt.Errorf("QUOTE_MAX_AMOUNT must be positive, got %v", a.Quote.MaxAmount)
	}
	if a.Quote.VolumeThreshold <= 0 {
		return fmt.Errorf("QUOTE_VOLUME_THRESHOLD must be positive, got %v", a.Quote.VolumeThreshold)
	}
	if a.Rates.TTL <= 0 || a.Rates.FetchTimeout <= 0 || a.Rates.FailureCooldown < 0 {
		return fmt.Errorf("invalid RATES_* durations: ttl=%s timeout=%s cooldown=%s",
			a.Rates.TTL, a.Rates.FetchTimeout, a.Rates.FailureCooldown)
	}
	return nil
}
