package metrics

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// Flow is one dated, signed amount of a cash-flow series from the investor's side:
// negative is capital paid in, positive is capital (or value) coming back.
type Flow struct {
	Date   domain.Date     `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// ParseCashFlowsForIRR turns a fund ledger into the signed series fed to CalculateIRR
// and CalculateMOIC.
//
// Contributions become -|amount| and distributions +|amount|, whatever sign they were
// stored with; adjustments are dropped. When a valuation snapshot exists on or before
// cutoff, the projected NAV (see LatestNav) is appended as a terminal flow dated at that
// snapshot, so unrealized value counts toward the return. The result is sorted by date.
func ParseCashFlowsForIRR(f *domain.Fund, cutoff domain.Date) []Flow {
	if f == nil {
		return nil
	}

	flows := make([]Flow, 0, len(f.CashFlows)+1)
	for _, cf := range f.CashFlows {
		if cf.Date.IsZero() || !cf.Date.OnOrBefore(cutoff) {
			continue
		}
		switch cf.Kind {
		case domain.FlowKindContribution:
			flows = append(flows, Flow{Date: cf.Date, Amount: cf.Amount.Abs().Neg()})
		case domain.FlowKindDistribution:
			flows = append(flows, Flow{Date: cf.Date, Amount: cf.Amount.Abs()})
		}
	}

	if snap, ok := latestValuation(f, cutoff); ok {
		flows = append(flows, Flow{Date: snap.Date, Amount: LatestNav(f, cutoff)})
	}

	sortFlows(flows)
	return flows
}

// sortFlows orders flows by date, keeping insertion order for equal dates.
func sortFlows(flows []Flow) {
	slices.SortStableFunc(flows, func(a, b Flow) int { return a.Date.Compare(b.Date) })
}

// splitFlows returns the total paid in (sum of |negative| amounts) and the total
// returned (sum of positive amounts).
func splitFlows(flows []Flow) (paidIn, returned decimal.Decimal) {
	for _, fl := range flows {
		if fl.Amount.IsNegative() {
			paidIn = paidIn.Add(fl.Amount.Abs())
		} else {
			returned = returned.Add(fl.Amount)
		}
	}
	return paidIn, returned
}
