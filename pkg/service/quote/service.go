// Package quote computes indicative transfer quotes.
package quote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/remitquote/pkg/currency"
	"github.com/amirasaad/remitquote/pkg/domain"
	"github.com/amirasaad/remitquote/pkg/domain/quote"
	"github.com/amirasaad/remitquote/pkg/eta"
	"github.com/amirasaad/remitquote/pkg/money"
	"github.com/amirasaad/remitquote/pkg/pricing"
	"github.com/amirasaad/remitquote/pkg/provider"
	"github.com/shopspring/decimal"
)

// ---- Constants ----

const (
	// DefaultVolumeThreshold is the reference-currency amount that triggers a volume hint
	DefaultVolumeThreshold = 10_000

	crossFeeLabel = "Bank transfer fees"
	localFeeLabel = "Transfer fee"

	staleRateDisclaimer = "Live rates are temporarily unavailable. " +
		"This quote uses the most recent rates we have and may differ from current market rates."
	volumeHintMessage = "Sending %s or more? Contact us for reduced fees on large transfers."
)

var (
	crossDisclaimers = []string{
		"Indicative quote. Final fees and rate may differ at execution.",
		"Intermediary banks may charge additional fees to the recipient.",
		"Rates and fees vary by route and payment details.",
	}
	localDisclaimers = []string{
		"Indicative quote. Final fees may differ at execution.",
		"Fees vary by payment details.",
	}

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// ---- Service ----

// Service computes quotes from the pricing table and the current rates.
type Service struct {
	rates           provider.MidMarketRates
	pricing         *pricing.Table
	currencies      *currency.Registry
	volumeThreshold decimal.Decimal
	now             func() time.Time
	logger          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for delivery estimates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithVolumeThreshold sets the reference-currency amount at which a volume hint is attached.
func WithVolumeThreshold(threshold float64) Option {
	return func(s *Service) { s.volumeThreshold = money.FromFloat(threshold) }
}

// New creates a quote Service.
func New(
	rates provider.MidMarketRates,
	table *pricing.Table,
	currencies *currency.Registry,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		rates:           rates,
		pricing:         table,
		currencies:      currencies,
		volumeThreshold: decimal.NewFromInt(DefaultVolumeThreshold),
		now:             time.Now,
		logger:          logger.With("service", "quote"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute builds a quote for req. It returns domain.ErrRateUnavailable when
// either currency has no rate, which is the only data-driven failure.
func (s *Service) Compute(ctx context.Context, req quote.Request) (*quote.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Method == "" {
		req.Method = quote.MethodBankTransfer
	}

	var (
		q   *quote.Quote
		err error
	)
	if s.pricing.IsLocalCorridor(req.SendCurrency, req.ReceiveCurrency) {
		q, err = s.local(req)
	} else {
		q, err = s.cross(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	q.VolumeHint = s.volumeHint(q.SendCurrency, q.SendAmount)

	s.logger.Debug("Quote computed",
		"corridor", req.SendCurrency+"->"+req.ReceiveCurrency,
		"direction", req.Direction,
		"amount", req.Amount,
		"send_amount", q.SendAmount,
		"receive_amount", q.ReceiveAmount,
		"fee", q.Fee,
		"local", q.IsLocalTransfer,
		"stale", q.RateStale,
	)
	return q, nil
}

// ---- Local transfers ----

func (s *Service) local(req quote.Request) (*quote.Quote, error) {
	rule := s.pricing.LocalRule(req.SendCurrency)
	d := s.currencies.Decimals(req.SendCurrency)
	fee := money.RoundDecimal(money.FromFloat(rule.FlatFee()), d)
	amount := money.RoundDecimal(money.FromFloat(req.Amount), d)

	var send, receive decimal.Decimal
	switch req.Direction {
	case quote.DirectionSend:
		send = amount
		receive = send.Sub(fee)
	default:
		receive = amount
		send = receive.Add(fee)
	}
	if !receive.IsPositive() {
		return nil, fmt.Errorf("%w: %s %s does not cover fee %s",
			domain.ErrAmountBelowLocalFee, amount, req.SendCurrency, fee)
	}

	estimate := eta.Format(rule.ETADays, s.now())
	return &quote.Quote{
		SendAmount:      send.InexactFloat64(),
		SendCurrency:    req.SendCurrency,
		ReceiveAmount:   receive.InexactFloat64(),
		ReceiveCurrency: req.ReceiveCurrency,
		Fee:             fee.InexactFloat64(),
		FeeCurrency:     req.SendCurrency,
		FeeLabel:        localFeeLabel,
		AmountToConvert: receive.InexactFloat64(),
		ETA:             estimate.Date,
		ETALabel:        estimate.Label,
		Method:          req.Method,
		IsLocalTransfer: true,
		Disclaimers:     append([]string(nil), localDisclaimers...),
	}, nil
}

// ---- Cross-currency transfers ----

func (s *Service) cross(ctx context.Context, req quote.Request) (*quote.Quote, error) {
	mid, ok := s.rates.MidMarketRate(ctx, req.SendCurrency, req.ReceiveCurrency)
	if !ok || !money.IsFinitePositive(mid.Rate) {
		return nil, fmt.Errorf("%w: %s->%s", domain.ErrRateUnavailable, req.SendCurrency, req.ReceiveCurrency)
	}

	rule := s.pricing.CorridorRule(req.SendCurrency, req.ReceiveCurrency)
	midRate := money.FromFloat(mid.Rate)
	rate := midRate.Mul(one.Sub(money.FromFloat(rule.FXMarkupPercent).Div(hundred)))

	sd := s.currencies.Decimals(req.SendCurrency)
	rd := s.currencies.Decimals(req.ReceiveCurrency)

	var amounts solved
	switch req.Direction {
	case quote.DirectionSend:
		amounts = solveForward(money.FromFloat(req.Amount), rate, rule.Fee, sd, rd)
	default:
		amounts = solveReverse(money.FromFloat(req.Amount), rate, rule.Fee, sd, rd)
	}

	estimate := eta.Format(rule.ETADays, s.now())
	q := &quote.Quote{
		SendAmount:      amounts.send.InexactFloat64(),
		SendCurrency:    req.SendCurrency,
		ReceiveAmount:   amounts.receive.InexactFloat64(),
		ReceiveCurrency: req.ReceiveCurrency,
		Fee:             amounts.fee.InexactFloat64(),
		FeeCurrency:     req.SendCurrency,
		FeeLabel:        crossFeeLabel,
		AmountToConvert: amounts.toConvert.InexactFloat64(),
		ExchangeRate:    money.RoundDecimal(rate, money.RatePrecision).InexactFloat64(),
		MidMarketRate:   money.RoundDecimal(midRate, money.RatePrecision).InexactFloat64(),
		ETA:             estimate.Date,
		ETALabel:        estimate.Label,
		Method:          req.Method,
		Disclaimers:     append([]string(nil), crossDisclaimers...),
	}
	if mid.Stale {
		q.RateStale = true
		q.RateDisclaimer = staleRateDisclaimer
	}
	if !mid.UpdatedAt.IsZero() {
		q.RateUpdatedAt = mid.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return q, nil
}

type solved struct {
	send      decimal.Decimal
	receive   decimal.Decimal
	fee       decimal.Decimal
	toConvert decimal.Decimal
}

// solveForward prices a known send amount. The fee is charged on the send amount.
func solveForward(send, rate decimal.Decimal, fee pricing.FeeRule, sd, rd int) solved {
	send = money.RoundDecimal(send, sd)
	f := money.RoundDecimal(fee.Apply(send), sd)
	toConvert := money.RoundDecimal(send.Sub(f), sd)
	return solved{
		send:      send,
		fee:       f,
		toConvert: toConvert,
		receive:   money.RoundDecimal(toConvert.Mul(rate), rd),
	}
}

// solveReverse finds the send amount for a known receive amount. When the
// back-solved fee falls outside the rule's bounds it is pinned to the bound
// and the send amount follows, so the fee is always a clamped value even if
// that breaks exact inversion of solveForward.
func solveReverse(receive, rate decimal.Decimal, fee pricing.FeeRule, sd, rd int) solved {
	receive = money.RoundDecimal(receive, rd)
	toConvert := money.RoundDecimal(receive.Div(rate), sd)

	var send decimal.Decimal
	if fee.Kind == pricing.FeeKindPercentage {
		keep := one.Sub(money.FromFloat(fee.Value).Div(hundred))
		send = money.RoundDecimal(toConvert.Div(keep), sd)
	} else {
		send = money.RoundDecimal(toConvert.Add(money.FromFloat(fee.Value)), sd)
	}
	f := money.RoundDecimal(send.Sub(toConvert), sd)

	lo, hi := money.FromFloat(fee.Min), money.FromFloat(fee.Max)
	switch {
	case f.LessThan(lo):
		f = money.RoundDecimal(lo, sd)
		send = money.RoundDecimal(toConvert.Add(f), sd)
	case f.GreaterThan(hi):
		f = money.RoundDecimal(hi, sd)
		send = money.RoundDecimal(toConvert.Add(f), sd)
	}
	return solved{send: send, receive: receive, fee: f, toConvert: toConvert}
}

// ---- Volume hint ----

// volumeHint uses seed rates so the hint does not flicker with live rates.
func (s *Service) volumeHint(code string, sendAmount float64) *quote.VolumeHint {
	seed, ok := s.pricing.SeedRate(code)
	if !ok || !money.IsFinitePositive(seed) {
		return nil
	}
	seedRate := money.FromFloat(seed)
	reference := money.FromFloat(sendAmount).Div(seedRate)
	if reference.LessThan(s.volumeThreshold) {
		return nil
	}

	local := s.volumeThreshold.Mul(seedRate).InexactFloat64()
	formatted := money.Format(local, s.currencies.Symbol(code), 0)
	return &quote.VolumeHint{
		Message:            fmt.Sprintf(volumeHintMessage, formatted),
		ThresholdFormatted: formatted,
	}
}
