// Package pricing resolves fee rules, FX markups and delivery windows per corridor.
//
// A corridor is a directed (send, receive) currency pair. Explicit overrides win;
// anything they leave unset falls back to the table's default rule, which is a
// first-class value returned by DefaultRule.
package pricing

import (
	"errors"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"
)

// FeeKind selects how a FeeRule computes its raw fee.
type FeeKind string

const (
	// FeeKindPercentage charges Value percent of the fee-bearing amount.
	FeeKindPercentage FeeKind = "percentage"
	// FeeKindFixed charges Value as an absolute amount.
	FeeKindFixed FeeKind = "fixed"
)

var (
	// ErrInvalidFeeRule is returned when a fee rule breaks its invariants
	ErrInvalidFeeRule = errors.New("invalid fee rule")
	// ErrInvalidCorridor is returned when a corridor row is malformed
	ErrInvalidCorridor = errors.New("invalid corridor pricing")
	// ErrInvalidSeedRate is returned for non-positive seed rates
	ErrInvalidSeedRate = errors.New("invalid seed rate")
)

var hundred = decimal.NewFromInt(100)

// FeeRule describes a fee and the bounds it is clamped to.
type FeeRule struct {
	Kind  FeeKind `yaml:"type" json:"type"`
	Value float64 `yaml:"value" json:"value"`
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
}

// Validate checks min <= max and that the rule can be inverted.
func (r FeeRule) Validate() error {
	switch r.Kind {
	case FeeKindPercentage:
		if r.Value < 0 || r.Value >= 100 {
			return fmt.Errorf("%w: percentage %v must be in [0, 100)", ErrInvalidFeeRule, r.Value)
		}
	case FeeKindFixed:
		if r.Value < 0 {
			return fmt.Errorf("%w: fixed fee %v is negative", ErrInvalidFeeRule, r.Value)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidFeeRule, r.Kind)
	}
	if r.Min < 0 || r.Min > r.Max {
		return fmt.Errorf("%w: bounds [%v, %v]", ErrInvalidFeeRule, r.Min, r.Max)
	}
	return nil
}

// Raw returns the unclamped fee for amount.
func (r FeeRule) Raw(amount decimal.Decimal) decimal.Decimal {
	if r.Kind == FeeKindPercentage {
		return amount.Mul(decimal.NewFromFloat(r.Value)).Div(hundred)
	}
	return decimal.NewFromFloat(r.Value)
}

// Clamp pins fee into [Min, Max].
func (r FeeRule) Clamp(fee decimal.Decimal) decimal.Decimal {
	fee = decimal.Max(fee, decimal.NewFromFloat(r.Min))
	return decimal.Min(fee, decimal.NewFromFloat(r.Max))
}

// Apply returns the effective fee for amount: clamp(raw, Min, Max).
func (r FeeRule) Apply(amount decimal.Decimal) decimal.Decimal {
	return r.Clamp(r.Raw(amount))
}

// ETADays is a delivery window in whole days.
type ETADays struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Validate checks 0 <= Min <= Max.
func (e ETADays) Validate() error {
	if e.Min < 0 || e.Min > e.Max {
		return fmt.Errorf("%w: eta days [%d, %d]", ErrInvalidCorridor, e.Min, e.Max)
	}
	return nil
}

// CorridorPricing is the resolved pricing of one directed currency pair.
type CorridorPricing struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Fee             FeeRule `json:"fee"`
	FXMarkupPercent float64 `json:"fxMarkupPercent"`
	ETADays         ETADays `json:"etaDays"`
}

// LocalPricing is a same-currency corridor: fixed fee, no markup.
type LocalPricing struct {
	CorridorPricing
}

// FlatFee returns the fixed fee charged on a local transfer.
func (l LocalPricing) FlatFee() float64 {
	return l.Fee.Value
}

// Table is a read-only pricing lookup built once at startup.
type Table struct {
	def       CorridorPricing
	overrides map[string]Override
	localFees map[string]float64
	localETA  ETADays
	seed      map[string]float64
}

// NewTable validates cfg and builds a Table from it.
func NewTable(cfg Config) (*Table, error) {
	if err := cfg.Default.Fee.Validate(); err != nil {
		return nil, fmt.Errorf("default rule: %w", err)
	}
	if err := validateMarkup(cfg.Default.FXMarkupPercent); err != nil {
		return nil, fmt.Errorf("default rule: %w", err)
	}
	if err := cfg.Default.ETADays.Validate(); err != nil {
		return nil, fmt.Errorf("default rule: %w", err)
	}
	if err := cfg.Local.ETADays.Validate(); err != nil {
		return nil, fmt.Errorf("local rule: %w", err)
	}

	t := &Table{
		def: CorridorPricing{
			Fee:             cfg.Default.Fee,
			FXMarkupPercent: cfg.Default.FXMarkupPercent,
			ETADays:         cfg.Default.ETADays,
		},
		overrides: make(map[string]Override, len(cfg.Overrides)),
		localFees: make(map[string]float64, len(cfg.Local.Fees)),
		localETA:  cfg.Local.ETADays,
		seed:      make(map[string]float64, len(cfg.SeedRates)),
	}

	for _, o := range cfg.Overrides {
		if err := o.validate(); err != nil {
			return nil, err
		}
		key := corridorKey(o.From, o.To)
		if _, dup := t.overrides[key]; dup {
			return nil, fmt.Errorf("%w: duplicate override %s", ErrInvalidCorridor, key)
		}
		t.overrides[key] = o
	}
	for code, fee := range cfg.Local.Fees {
		if fee < 0 {
			return nil, fmt.Errorf("%w: local fee for %s is negative", ErrInvalidFeeRule, code)
		}
		t.localFees[code] = fee
	}
	for code, rate := range cfg.SeedRates {
		if !(rate > 0) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidSeedRate, code, rate)
		}
		t.seed[code] = rate
	}
	return t, nil
}

// IsLocalCorridor reports whether from and to are the same currency.
func (t *Table) IsLocalCorridor(from, to string) bool {
	return from == to
}

// DefaultRule returns the rule applied to corridors without an override.
func (t *Table) DefaultRule() CorridorPricing {
	return t.def
}

// CorridorRule returns the pricing for from -> to, merging any override over the default.
func (t *Table) CorridorRule(from, to string) CorridorPricing {
	rule := t.def
	rule.From, rule.To = from, to

	o, ok := t.overrides[corridorKey(from, to)]
	if !ok {
		return rule
	}
	if o.Fee != nil {
		rule.Fee = *o.Fee
	}
	if o.FXMarkupPercent != nil {
		rule.FXMarkupPercent = *o.FXMarkupPercent
	}
	if o.ETADays != nil {
		rule.ETADays = *o.ETADays
	}
	return rule
}

// LocalRule returns the flat-fee pricing for a same-currency transfer.
// Currencies without a configured fee are free.
func (t *Table) LocalRule(code string) LocalPricing {
	fee := t.localFees[code]
	return LocalPricing{CorridorPricing{
		From:    code,
		To:      code,
		Fee:     FeeRule{Kind: FeeKindFixed, Value: fee, Min: fee, Max: fee},
		ETADays: t.localETA,
	}}
}

// SeedRate returns the static units-per-reference-currency rate for code.
func (t *Table) SeedRate(code string) (float64, bool) {
	r, ok := t.seed[code]
	return r, ok
}

// SeedRates returns a copy of the static rate table.
func (t *Table) SeedRates() map[string]float64 {
	return maps.Clone(t.seed)
}

func corridorKey(from, to string) string {
	return from + "->" + to
}

func validateMarkup(p float64) error {
	if p < 0 || p >= 100 {
		return fmt.Errorf("%w: fx markup %v must be in [0, 100)", ErrInvalidCorridor, p)
	}
	return nil
}
