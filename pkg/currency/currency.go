package currency

import (
	"fmt"
	"slices"
	"strings"

	"github.com/amirasaad/remitquote/pkg/money"
)

const (
	// ReferenceCurrency is the currency every seed and live rate is quoted against
	ReferenceCurrency = "USD"
	// DefaultDecimals is the default number of decimal places for currencies
	DefaultDecimals = money.DefaultDecimals
)

// Currency holds display and formatting metadata for a supported currency.
type Currency struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Flag     string `json:"flag"`
	Decimals int    `json:"decimals"`
}

// Validate checks the invariants a registry entry must hold.
func (c Currency) Validate() error {
	if len(c.Code) != 3 || strings.ToUpper(c.Code) != c.Code {
		return fmt.Errorf("invalid currency code %q", c.Code)
	}
	if c.Decimals < 0 || c.Decimals > 8 {
		return fmt.Errorf("currency %s: decimals %d out of range", c.Code, c.Decimals)
	}
	return nil
}

// Registry is a read-only lookup of supported currencies.
// It is built once at startup and safe for concurrent use.
type Registry struct {
	byCode map[string]Currency
	order  []string
}

// NewRegistry creates a registry from the given currencies, keeping their order.
func NewRegistry(currencies ...Currency) (*Registry, error) {
	r := &Registry{
		byCode: make(map[string]Currency, len(currencies)),
		order:  make([]string, 0, len(currencies)),
	}
	for _, c := range currencies {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byCode[c.Code]; dup {
			return nil, fmt.Errorf("duplicate currency code %s", c.Code)
		}
		r.byCode[c.Code] = c
		r.order = append(r.order, c.Code)
	}
	return r, nil
}

// Lookup returns the currency for code.
func (r *Registry) Lookup(code string) (Currency, bool) {
	c, ok := r.byCode[code]
	return c, ok
}

// IsSupported checks if a currency code is registered
func (r *Registry) IsSupported(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

// Decimals returns the minor-unit count for code, or DefaultDecimals when unknown.
func (r *Registry) Decimals(code string) int {
	if c, ok := r.byCode[code]; ok {
		return c.Decimals
	}
	return DefaultDecimals
}

// Symbol returns the display symbol for code, falling back to the code itself.
func (r *Registry) Symbol(code string) string {
	if c, ok := r.byCode[code]; ok && c.Symbol != "" {
		return c.Symbol
	}
	return code
}

// List returns all currencies in registration order.
func (r *Registry) List() []Currency {
	out := make([]Currency, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.byCode[code])
	}
	return out
}

// Codes returns the supported codes in registration order.
func (r *Registry) Codes() []string {
	return slices.Clone(r.order)
}

// Count returns the total number of registered currencies
func (r *Registry) Count() int {
	return len(r.order)
}
