package pricing

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a pricing table.
type Config struct {
	Default   DefaultConfig      `yaml:"default"`
	Local     LocalConfig        `yaml:"local"`
	Overrides []Override         `yaml:"overrides"`
	SeedRates map[string]float64 `yaml:"seedRates"`
}

// DefaultConfig is the rule used when a corridor has no override.
type DefaultConfig struct {
	Fee             FeeRule `yaml:"fee"`
	FXMarkupPercent float64 `yaml:"fxMarkupPercent"`
	ETADays         ETADays `yaml:"etaDays"`
}

// LocalConfig holds same-currency flat fees keyed by currency code.
type LocalConfig struct {
	ETADays ETADays            `yaml:"etaDays"`
	Fees    map[string]float64 `yaml:"fees"`
}

// Override replaces parts of the default rule for one corridor.
// Nil fields keep the default.
type Override struct {
	From            string   `yaml:"from"`
	To              string   `yaml:"to"`
	Fee             *FeeRule `yaml:"fee,omitempty"`
	FXMarkupPercent *float64 `yaml:"fxMarkupPercent,omitempty"`
	ETADays         *ETADays `yaml:"etaDays,omitempty"`
}

func (o Override) validate() error {
	if o.From == "" || o.To == "" {
		return fmt.Errorf("%w: override needs from and to", ErrInvalidCorridor)
	}
	if o.From == o.To {
		return fmt.Errorf("%w: override %s->%s is a local corridor", ErrInvalidCorridor, o.From, o.To)
	}
	if o.Fee != nil {
		if err := o.Fee.Validate(); err != nil {
			return fmt.Errorf("override %s->%s: %w", o.From, o.To, err)
		}
	}
	if o.FXMarkupPercent != nil {
		if err := validateMarkup(*o.FXMarkupPercent); err != nil {
			return fmt.Errorf("override %s->%s: %w", o.From, o.To, err)
		}
	}
	if o.ETADays != nil {
		if err := o.ETADays.Validate(); err != nil {
			return fmt.Errorf("override %s->%s: %w", o.From, o.To, err)
		}
	}
	return nil
}

// Parse decodes a YAML pricing document and builds a Table from it.
func Parse(data []byte) (*Table, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode pricing table: %w", err)
	}
	return NewTable(cfg)
}
