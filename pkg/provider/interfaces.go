package provider

import (
	"context"
	"errors"
	"time"
)

// Common errors for provider operations
var (
	// ErrSourceDisabled is returned by a source that has no credential configured
	ErrSourceDisabled = errors.New("rate source disabled")
	// ErrMalformedPayload is returned when a source answers with unusable data
	ErrMalformedPayload = errors.New("malformed rate payload")
)

// RateSource fetches the full table of mid-market rates from an upstream.
// Rates are units of each currency per one unit of the reference currency.
type RateSource interface {
	// Latest fetches the current rate table
	Latest(ctx context.Context) (map[string]float64, error)

	// Name returns the source's name for logging and identification
	Name() string

	// Enabled reports whether the source is configured to be called at all
	Enabled() bool
}

// RateQuote is a triangulated corridor rate and the freshness of the data behind it.
type RateQuote struct {
	Rate      float64
	Stale     bool
	UpdatedAt time.Time
	IsLive    bool
}

// MidMarketRates resolves the mid-market rate for a corridor.
type MidMarketRates interface {
	// MidMarketRate returns to/from units, or false if either code is unknown
	MidMarketRate(ctx context.Context, from, to string) (RateQuote, bool)
}

// RateStatus is an operational view of a rate cache.
type RateStatus struct {
	Source       string     `json:"source"`
	Enabled      bool       `json:"enabled"`
	IsLive       bool       `json:"isLive"`
	Stale        bool       `json:"stale"`
	FetchedAt    *time.Time `json:"fetchedAt,omitempty"`
	LastFailedAt *time.Time `json:"lastFailedAt,omitempty"`
	Currencies   int        `json:"currencies"`
}

// RateCache is a MidMarketRates that can report its own freshness.
type RateCache interface {
	MidMarketRates

	// Status reports the cache state without triggering a refresh
	Status() RateStatus
}
