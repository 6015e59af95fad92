// Package quote defines the quote request and response values.
package quote

import (
	"fmt"

	"github.com/amirasaad/remitquote/pkg/domain"
)

// Direction says which side of the transfer the customer's amount is on.
type Direction string

const (
	// DirectionSend means the amount is what the sender pays
	DirectionSend Direction = "send"
	// DirectionReceive means the amount is what the recipient gets
	DirectionReceive Direction = "receive"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionSend || d == DirectionReceive
}

// Method is the payout rail.
type Method string

// MethodBankTransfer is the only supported method.
const MethodBankTransfer Method = "bank_transfer"

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	return m == MethodBankTransfer
}

// Request is a validated quote request.
type Request struct {
	SendCurrency    string
	ReceiveCurrency string
	Amount          float64
	Direction       Direction
	Method          Method
}

// Validate checks the fields the engine relies on. Currency support and
// amount ceilings are checked by the caller.
func (r Request) Validate() error {
	if !r.Direction.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDirection, r.Direction)
	}
	if r.Method != "" && !r.Method.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMethod, r.Method)
	}
	if !(r.Amount > 0) {
		return domain.ErrInvalidAmount
	}
	return nil
}

// VolumeHint suggests contacting sales for large transfers.
type VolumeHint struct {
	Message            string `json:"message"`
	ThresholdFormatted string `json:"thresholdFormatted"`
}

// Quote is an indicative, immutable transfer quote.
type Quote struct {
	SendAmount      float64     `json:"sendAmount"`
	SendCurrency    string      `json:"sendCurrency"`
	ReceiveAmount   float64     `json:"receiveAmount"`
	ReceiveCurrency string      `json:"receiveCurrency"`
	Fee             float64     `json:"fee"`
	FeeCurrency     string      `json:"feeCurrency"`
	FeeLabel        string      `json:"feeLabel"`
	AmountToConvert float64     `json:"amountToConvert"`
	ExchangeRate    float64     `json:"exchangeRate"`
	MidMarketRate   float64     `json:"midMarketRate"`
	ETA             string      `json:"eta"`
	ETALabel        string      `json:"etaLabel"`
	Method          Method      `json:"method"`
	IsLocalTransfer bool        `json:"isLocalTransfer"`
	RateStale       bool        `json:"rateStale,omitempty"`
	RateDisclaimer  string      `json:"rateDisclaimer,omitempty"`
	RateUpdatedAt   string      `json:"rateUpdatedAt,omitempty"`
	VolumeHint      *VolumeHint `json:"volumeHint,omitempty"`
	Disclaimers     []string    `json:"disclaimers"`
}
