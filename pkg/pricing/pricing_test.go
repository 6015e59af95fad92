package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func testConfig() Config {
	return Config{
		Default: DefaultConfig{
			Fee:             FeeRule{Kind: FeeKindPercentage, Value: 1.5, Min: 5, Max: 50},
			FXMarkupPercent: 1.0,
			ETADays:         ETADays{Min: 1, Max: 3},
		},
		Local: LocalConfig{
			ETADays: ETADays{Min: 0, Max: 1},
			Fees:    map[string]float64{"USD": 1.5, "BRL": 0},
		},
		Overrides: []Override{
			{
				From:            "USD",
				To:              "BRL",
				Fee:             &FeeRule{Kind: FeeKindPercentage, Value: 2, Min: 5, Max: 50},
				FXMarkupPercent: ptr(0.5),
			},
		},
		SeedRates: map[string]float64{"USD": 1, "BRL": 5.8},
	}
}

func TestFeeRule_Apply(t *testing.T) {
	rule := FeeRule{Kind: FeeKindPercentage, Value: 2, Min: 5, Max: 50}

	tests := []struct {
		name     string
		amount   float64
		expected float64
	}{
		{"within bounds", 1000, 20},
		{"clamped to min", 100, 5},
		{"clamped to max", 10000, 50},
		{"exactly min", 250, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rule.Apply(decimal.NewFromFloat(tt.amount))
			assert.True(t, got.Equal(decimal.NewFromFloat(tt.expected)), "got %s", got)
		})
	}

	fixed := FeeRule{Kind: FeeKindFixed, Value: 3, Min: 3, Max: 3}
	assert.True(t, fixed.Apply(decimal.NewFromInt(100000)).Equal(decimal.NewFromInt(3)))
}

func TestFeeRule_Validate(t *testing.T) {
	tests := []struct {
		name string
		rule FeeRule
		ok   bool
	}{
		{"percentage", FeeRule{Kind: FeeKindPercentage, Value: 1, Min: 0, Max: 10}, true},
		{"fixed", FeeRule{Kind: FeeKindFixed, Value: 2, Min: 2, Max: 2}, true},
		{"min above max", FeeRule{Kind: FeeKindPercentage, Value: 1, Min: 10, Max: 5}, false},
		{"negative min", FeeRule{Kind: FeeKindFixed, Value: 1, Min: -1, Max: 5}, false},
		{"hundred percent", FeeRule{Kind: FeeKindPercentage, Value: 100, Min: 0, Max: 5}, false},
		{"unknown kind", FeeRule{Kind: "tiered", Value: 1, Min: 0, Max: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidFeeRule)
			}
		})
	}
}

func TestTable_CorridorRule(t *testing.T) {
	table, err := NewTable(testConfig())
	require.NoError(t, err)

	brl := table.CorridorRule("USD", "BRL")
	assert.Equal(t, "USD", brl.From)
	assert.Equal(t, "BRL", brl.To)
	assert.InDelta(t, 2.0, brl.Fee.Value, 1e-9)
	assert.InDelta(t, 0.5, brl.FXMarkupPercent, 1e-9)
	// ETA was not overridden
	assert.Equal(t, ETADays{Min: 1, Max: 3}, brl.ETADays)

	def := table.CorridorRule("EUR", "MXN")
	assert.Equal(t, table.DefaultRule().Fee, def.Fee)
	assert.Equal(t, "EUR", def.From)
	assert.Empty(t, table.DefaultRule().From)

	// Overrides are directional.
	rev := table.CorridorRule("BRL", "USD")
	assert.Equal(t, table.DefaultRule().Fee, rev.Fee)
	assert.InDelta(t, table.DefaultRule().FXMarkupPercent, rev.FXMarkupPercent, 1e-9)
}

func TestTable_LocalRule(t *testing.T) {
	table, err := NewTable(testConfig())
	require.NoError(t, err)

	assert.True(t, table.IsLocalCorridor("USD", "USD"))
	assert.False(t, table.IsLocalCorridor("USD", "BRL"))

	usd := table.LocalRule("USD")
	assert.Equal(t, FeeKindFixed, usd.Fee.Kind)
	assert.InDelta(t, 1.5, usd.FlatFee(), 1e-9)
	assert.Zero(t, usd.FXMarkupPercent)
	assert.Equal(t, ETADays{Min: 0, Max: 1}, usd.ETADays)

	assert.Zero(t, table.LocalRule("COP").FlatFee())
}

func TestTable_SeedRates(t *testing.T) {
	table, err := NewTable(testConfig())
	require.NoError(t, err)

	rate, ok := table.SeedRate("BRL")
	require.True(t, ok)
	assert.InDelta(t, 5.8, rate, 1e-9)

	_, ok = table.SeedRate("JPY")
	assert.False(t, ok)

	seeds := table.SeedRates()
	seeds["BRL"] = 1
	rate, _ = table.SeedRate("BRL")
	assert.InDelta(t, 5.8, rate, 1e-9, "SeedRates must return a copy")
}

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"default fee bounds", func(c *Config) { c.Default.Fee.Min = 60 }, ErrInvalidFeeRule},
		{"default markup", func(c *Config) { c.Default.FXMarkupPercent = -1 }, ErrInvalidCorridor},
		{"default eta", func(c *Config) { c.Default.ETADays = ETADays{Min: 3, Max: 1} }, ErrInvalidCorridor},
		{"local fee", func(c *Config) { c.Local.Fees["EUR"] = -1 }, ErrInvalidFeeRule},
		{"seed rate", func(c *Config) { c.SeedRates["EUR"] = 0 }, ErrInvalidSeedRate},
		{"duplicate override", func(c *Config) { c.Overrides = append(c.Overrides, c.Overrides[0]) }, ErrInvalidCorridor},
		{"local override", func(c *Config) { c.Overrides[0].To = "USD" }, ErrInvalidCorridor},
		{"override markup", func(c *Config) { c.Overrides[0].FXMarkupPercent = ptr(100.0) }, ErrInvalidCorridor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := NewTable(cfg)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestParse(t *testing.T) {
	doc := []byte(`
default:
  fee: { type: percentage, value: 1.5, min: 5, max: 50 }
  fxMarkupPercent: 1
  etaDays: { min: 1, max: 3 }
local:
  etaDays: { min: 0, max: 1 }
  fees: { USD: 1.5 }
overrides:
  - from: USD
    to: EUR
    etaDays: { min: 0, max: 1 }
seedRates: { USD: 1, EUR: 0.952 }
`)
	table, err := Parse(doc)
	require.NoError(t, err)

	eur := table.CorridorRule("USD", "EUR")
	assert.Equal(t, ETADays{Min: 0, Max: 1}, eur.ETADays)
	assert.Equal(t, table.DefaultRule().Fee, eur.Fee)

	_, err = Parse([]byte("default: ["))
	assert.Error(t, err)
}
