package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	currencyfixtures "github.com/amirasaad/remitquote/internal/fixtures/currency"
	pricingfixtures "github.com/amirasaad/remitquote/internal/fixtures/pricing"
	"github.com/amirasaad/remitquote/pkg/domain"
	"github.com/amirasaad/remitquote/pkg/domain/quote"
	"github.com/amirasaad/remitquote/pkg/provider"
	quotesvc "github.com/amirasaad/remitquote/pkg/service/quote"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seedRates map[string]float64

func (s seedRates) MidMarketRate(_ context.Context, from, to string) (provider.RateQuote, bool) {
	f, okFrom := s[from]
	t, okTo := s[to]
	if !okFrom || !okTo {
		return provider.RateQuote{}, false
	}
	return provider.RateQuote{Rate: t / f}, true
}

func newTestCLI(t *testing.T, pretty bool) (*cli, *bytes.Buffer) {
	t.Helper()
	registry, err := currencyfixtures.LoadRegistry("")
	require.NoError(t, err)
	table, err := pricingfixtures.LoadTable("")
	require.NoError(t, err)

	svc := quotesvc.New(seedRates(table.SeedRates()), table, registry,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		quotesvc.WithClock(func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }),
	)
	out := &bytes.Buffer{}
	return &cli{svc: svc, registry: registry, maxAmount: 10_000_000, out: out, pretty: pretty}, out
}

func TestCLI_QuoteJSON(t *testing.T) {
	c, out := newTestCLI(t, false)

	require.NoError(t, c.dispatch(context.Background(), []string{"quote", "usd", "usd", "100"}))

	var q quote.Quote
	require.NoError(t, json.Unmarshal(out.Bytes(), &q))
	assert.True(t, q.IsLocalTransfer)
	assert.InDelta(t, 98.5, q.ReceiveAmount, 1e-9)
}

func TestCLI_QuoteReceiveDirection(t *testing.T) {
	c, out := newTestCLI(t, false)

	require.NoError(t, c.dispatch(context.Background(), []string{"quote", "USD", "EUR", "500", "receive"}))

	var q quote.Quote
	require.NoError(t, json.Unmarshal(out.Bytes(), &q))
	assert.InDelta(t, 500.0, q.ReceiveAmount, 1e-9)
	assert.Greater(t, q.SendAmount, 500.0)
}

func TestCLI_QuotePretty(t *testing.T) {
	color.NoColor = true
	c, out := newTestCLI(t, true)

	require.NoError(t, c.dispatch(context.Background(), []string{"quote", "USD", "BRL", "1000"}))

	text := out.String()
	assert.Contains(t, text, "You send")
	assert.Contains(t, text, "1,000.00 USD")
	assert.Contains(t, text, "Recipient gets")
	assert.Contains(t, text, "BRL")
	assert.Contains(t, text, "* ")
}

func TestCLI_Currencies(t *testing.T) {
	c, out := newTestCLI(t, false)
	require.NoError(t, c.dispatch(context.Background(), []string{"currencies"}))

	var list []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	assert.Len(t, list, 10)

	color.NoColor = true
	c, out = newTestCLI(t, true)
	require.NoError(t, c.dispatch(context.Background(), []string{"currencies"}))
	assert.Contains(t, out.String(), "COP")
	assert.Contains(t, out.String(), "(0 decimals)")
}

func TestCLI_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown command", []string{"send"}, errUsage},
		{"missing amount", []string{"quote", "USD", "EUR"}, errUsage},
		{"bad amount", []string{"quote", "USD", "EUR", "ten"}, domain.ErrInvalidAmount},
		{"negative amount", []string{"quote", "USD", "EUR", "-5"}, domain.ErrInvalidAmount},
		{"above max", []string{"quote", "USD", "EUR", "20000000"}, domain.ErrAmountExceedsMax},
		{"unsupported currency", []string{"quote", "USD", "JPY", "10"}, domain.ErrUnsupportedCurrency},
		{"bad direction", []string{"quote", "USD", "EUR", "10", "sideways"}, domain.ErrInvalidDirection},
		{"local below fee", []string{"quote", "USD", "USD", "1"}, domain.ErrAmountBelowLocalFee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCLI(t, false)
			err := c.dispatch(context.Background(), tt.args)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRun_NoArgs(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, io.Discard, &stderr))
	assert.Contains(t, stderr.String(), "Usage")
}
