package domain

import "errors"

var (
	// ErrFundNotFound is returned when no fund exists for the requested ID.
	ErrFundNotFound = errors.New("fund not found")

	// ErrInvalidDate is returned for strings that are not a real YYYY-MM-DD calendar day.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidAmount is returned when an amount cannot be parsed into a decimal.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidKind is returned for cash flow kinds outside Contribution/Distribution/Adjustment.
	ErrInvalidKind = errors.New("invalid cash flow kind")
)
