package quote

import (
	"github.com/amirasaad/remitquote/pkg/domain/quote"
)

// QuoteRequest is the POST /api/quote body.
type QuoteRequest struct {
	SendCurrency    string   `json:"sendCurrency" validate:"required,len=3,uppercase,alpha"`
	ReceiveCurrency string   `json:"receiveCurrency" validate:"required,len=3,uppercase,alpha"`
	Amount          *float64 `json:"amount" validate:"required,gt=0"`
	Direction       string   `json:"direction" validate:"required,oneof=send receive"`
	Method          string   `json:"method,omitempty" validate:"omitempty,oneof=bank_transfer"`
}

// ToDomain converts the validated body to an engine request.
func (r *QuoteRequest) ToDomain() quote.Request {
	method := quote.Method(r.Method)
	if method == "" {
		method = quote.MethodBankTransfer
	}
	return quote.Request{
		SendCurrency:    r.SendCurrency,
		ReceiveCurrency: r.ReceiveCurrency,
		Amount:          *r.Amount,
		Direction:       quote.Direction(r.Direction),
		Method:          method,
	}
}
