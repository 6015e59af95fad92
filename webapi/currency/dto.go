package currency

import "github.com/amirasaad/remitquote/pkg/currency"

// CurrencyResponse represents the response structure for currency data
type CurrencyResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Flag     string `json:"flag,omitempty"`
	Decimals int    `json:"decimals"`
}

// ToResponse converts a registry entry to a response DTO
func ToResponse(c currency.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:     c.Code,
		Name:     c.Name,
		Symbol:   c.Symbol,
		Flag:     c.Flag,
		Decimals: c.Decimals,
	}
}
