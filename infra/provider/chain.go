package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/remitquote/pkg/provider"
)

// Chain is a RateSource that tries each enabled source in order and returns
// the first table that fetches cleanly.
type Chain struct {
	sources []provider.RateSource
	logger  *slog.Logger
}

// NewChain creates a chain over sources, in priority order.
func NewChain(logger *slog.Logger, sources ...provider.RateSource) *Chain {
	return &Chain{sources: sources, logger: logger.With("source", "chain")}
}

// Name lists the enabled sources, or the configured ones when none is enabled.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		if s.Enabled() {
			names = append(names, s.Name())
		}
	}
	if len(names) == 0 {
		for _, s := range c.sources {
			names = append(names, s.Name())
		}
	}
	return strings.Join(names, ",")
}

// Enabled reports whether any source in the chain is enabled.
func (c *Chain) Enabled() bool {
	for _, s := range c.sources {
		if s.Enabled() {
			return true
		}
	}
	return false
}

// Latest returns the first successful fetch. All failures are joined.
func (c *Chain) Latest(ctx context.Context) (map[string]float64, error) {
	var errs []error
	for _, s := range c.sources {
		if !s.Enabled() {
			continue
		}
		rates, err := s.Latest(ctx)
		if err == nil {
			return rates, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("Rate source failed, trying next", "failed", s.Name(), "error", err)
	}
	if len(errs) == 0 {
		return nil, provider.ErrSourceDisabled
	}
	return nil, errors.Join(errs...)
}
