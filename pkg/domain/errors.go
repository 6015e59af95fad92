package domain

import "errors"

// Common domain errors
var (
	// ErrRateUnavailable is returned when no mid-market rate exists for a corridor.
	// This is a data gap, not a transient upstream failure.
	ErrRateUnavailable = errors.New("rate data unavailable for this currency pair")
	// ErrUnsupportedCurrency is returned when a currency code is not in the registry
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrInvalidAmount is returned when an amount is not a finite positive number
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrAmountExceedsMax is returned when an amount is above the configured ceiling
	ErrAmountExceedsMax = errors.New("amount exceeds maximum")
	// ErrAmountBelowLocalFee is returned when a same-currency amount does not cover the flat fee
	ErrAmountBelowLocalFee = errors.New("amount must be greater than the transfer fee")
	// ErrInvalidDirection is returned for a direction other than send or receive
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrInvalidMethod is returned for an unsupported transfer method
	ErrInvalidMethod = errors.New("invalid transfer method")
)
