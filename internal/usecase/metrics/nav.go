package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// LatestNav estimates the fund's value at cutoff (zero cutoff: no limit).
//
// It starts from the latest snapshot dated on or before cutoff and rolls it forward
// through every flow dated strictly after the snapshot and on or before cutoff:
// contributions add to the value (cash received by the fund), distributions subtract
// from it, adjustments are ignored. Without any qualifying snapshot the NAV is zero.
func LatestNav(f *domain.Fund, cutoff domain.Date) decimal.Decimal {
	snap, ok := latestValuation(f, cutoff)
	if !ok {
		return decimal.Zero
	}

	nav := snap.Amount
	for _, cf := range f.CashFlows {
		if !cf.Date.After(snap.Date) || !cf.Date.OnOrBefore(cutoff) {
			continue
		}
		switch cf.Kind {
		case domain.FlowKindContribution:
			nav = nav.Add(cf.Amount.Abs())
		case domain.FlowKindDistribution:
			nav = nav.Sub(cf.Amount.Abs())
		}
	}
	return nav
}

// latestValuation picks the snapshot with the latest date on or before cutoff.
// Among snapshots sharing that date, the last recorded wins.
func latestValuation(f *domain.Fund, cutoff domain.Date) (domain.ValuationSnapshot, bool) {
	var (
		best  domain.ValuationSnapshot
		found bool
	)
	if f == nil {
		return best, false
	}
	for _, v := range f.Valuations {
		if v.Date.IsZero() || !v.Date.OnOrBefore(cutoff) {
			continue
		}
		if !found || !v.Date.Before(best.Date) {
			best, found = v, true
		}
	}
	return best, found
}
