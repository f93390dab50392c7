package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlowKind represents the kind of a ledger cash movement
type FlowKind string

const (
	FlowKindContribution FlowKind = "CONTRIBUTION" // capital call, cash leaving the investor
	FlowKindDistribution FlowKind = "DISTRIBUTION" // capital returned to the investor
	FlowKindAdjustment   FlowKind = "ADJUSTMENT"   // manual correction, excluded from return math
)

// ParseFlowKind maps a case-insensitive name to a FlowKind
func ParseFlowKind(s string) (FlowKind, error) {
	switch FlowKind(strings.ToUpper(strings.TrimSpace(s))) {
	case FlowKindContribution:
		return FlowKindContribution, nil
	case FlowKindDistribution:
		return FlowKindDistribution, nil
	case FlowKindAdjustment:
		return FlowKindAdjustment, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// CashFlow represents one capital call, return of capital, or manual correction.
// Amount sign in storage is not canonical: contributions may be stored positive or
// negative. Every derived computation normalizes by Kind.
type CashFlow struct {
	ID          uuid.UUID
	FundID      uuid.UUID
	Date        Date
	Amount      decimal.Decimal
	Kind        FlowKind
	Description string

	// AffectsCommitment marks flows that change remaining callable commitment.
	// A recallable distribution restores capacity; a plain one does not.
	AffectsCommitment bool
}

// Validate ensures the cash flow adheres to domain rules
func (c *CashFlow) Validate() error {
	if c.Date.IsZero() {
		return fmt.Errorf("%w: cash flow must have a date", ErrInvalidDate)
	}
	if _, err := ParseFlowKind(string(c.Kind)); err != nil {
		return err
	}
	if c.Amount.IsZero() {
		return errors.New("cash flow amount must be non-zero")
	}
	return nil
}
