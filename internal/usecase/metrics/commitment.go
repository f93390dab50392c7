package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// OutstandingCommitment returns the capital that can still be called at cutoff:
//
//	commitment - sum|contributions| + sum|distributions|
//
// over flows marked AffectsCommitment, floored at zero. Recallable distributions may
// restore capacity beyond the original commitment; the result is not capped there.
func OutstandingCommitment(f *domain.Fund, cutoff domain.Date) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}

	outstanding := f.Commitment
	for _, cf := range f.CashFlows {
		if !cf.AffectsCommitment || !cf.Date.OnOrBefore(cutoff) {
			continue
		}
		switch cf.Kind {
		case domain.FlowKindContribution:
			outstanding = outstanding.Sub(cf.Amount.Abs())
		case domain.FlowKindDistribution:
			outstanding = outstanding.Add(cf.Amount.Abs())
		}
	}

	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// TotalByType sums |amount| of every flow of the given kind dated on or before cutoff.
func TotalByType(f *domain.Fund, kind domain.FlowKind, cutoff domain.Date) decimal.Decimal {
	total := decimal.Zero
	if f == nil {
		return total
	}
	for _, cf := range f.CashFlows {
		if cf.Kind == kind && cf.Date.OnOrBefore(cutoff) {
			total = total.Add(cf.Amount.Abs())
		}
	}
	return total
}

// VintageYear returns the calendar year of the earliest dated contribution.
// Distributions and adjustments never set the vintage, even when dated earlier.
func VintageYear(f *domain.Fund) (int, bool) {
	if f == nil {
		return 0, false
	}

	var earliest domain.Date
	for _, cf := range f.CashFlows {
		if cf.Kind != domain.FlowKindContribution || cf.Date.IsZero() {
			continue
		}
		if earliest.IsZero() || cf.Date.Before(earliest) {
			earliest = cf.Date
		}
	}
	if earliest.IsZero() {
		return 0, false
	}
	return earliest.Year(), true
}
