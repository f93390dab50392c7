package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValuationSnapshot is a point-in-time estimate of what the fund position is worth.
// Amount may be negative for impaired positions.
type ValuationSnapshot struct {
	ID     uuid.UUID
	FundID uuid.UUID
	Date   Date
	Amount decimal.Decimal
}

// Validate ensures the snapshot adheres to domain rules
func (v *ValuationSnapshot) Validate() error {
	if v.Date.IsZero() {
		return fmt.Errorf("%w: valuation must have a date", ErrInvalidDate)
	}
	return nil
}
