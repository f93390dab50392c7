package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fund is the aggregate root of the ledger: a commitment plus the cash flows and
// valuation snapshots recorded against it, in creation order (not date order).
//
// The metrics engine treats a Fund as immutable input and never mutates it.
type Fund struct {
	ID         uuid.UUID
	Name       string
	Group      string          // grouping metadata, not used by metrics
	Commitment decimal.Decimal // non-negative
	CreatedAt  time.Time

	CashFlows  []CashFlow
	Valuations []ValuationSnapshot
}

// Validate ensures the fund adheres to domain rules
func (f *Fund) Validate() error {
	if f.Name == "" {
		return errors.New("fund name cannot be empty")
	}
	if f.Commitment.IsNegative() {
		return errors.New("fund commitment must be non-negative")
	}
	return nil
}

// AsOf returns a copy of the fund whose ledger and snapshots are restricted to
// dates on or before cutoff. A zero cutoff keeps everything.
// The receiver is left untouched.
func (f *Fund) AsOf(cutoff Date) *Fund {
	out := *f
	out.CashFlows = make([]CashFlow, 0, len(f.CashFlows))
	for _, cf := range f.CashFlows {
		if cf.Date.OnOrBefore(cutoff) {
			out.CashFlows = append(out.CashFlows, cf)
		}
	}
	out.Valuations = make([]ValuationSnapshot, 0, len(f.Valuations))
	for _, v := range f.Valuations {
		if v.Date.OnOrBefore(cutoff) {
			out.Valuations = append(out.Valuations, v)
		}
	}
	return &out
}
