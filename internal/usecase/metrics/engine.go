package metrics

import (
	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// Engine assembles the full MetricsRecord of a fund. It holds only immutable
// configuration and is safe for concurrent use.
type Engine struct {
	irr IRRConfig
}

// NewEngine creates an Engine using cfg for IRR root-finding
func NewEngine(cfg IRRConfig) *Engine {
	return &Engine{irr: cfg}
}

// IRRConfig returns the root-finder configuration of the engine
func (e *Engine) IRRConfig() IRRConfig { return e.irr }

// CalculateMetrics computes every derived figure of f as of cutoff (zero: no limit).
// Logic:
//   - Ledger and snapshots are restricted to dates on or before cutoff
//   - CalledCapital / TotalDistributions: sign-agnostic sums by kind
//   - NAV: latest snapshot rolled forward (LatestNav)
//   - InvestmentReturn = distributions + NAV - called capital
//   - IRR from the normalized series; DPI / RVPI / TVPI from the totals
//   - MOIC = TVPI, so an impaired (negative) NAV lowers the multiple instead of
//     counting as capital paid in
//
// All five ratios are null together when no capital was called.
func (e *Engine) CalculateMetrics(f *domain.Fund, cutoff domain.Date) domain.MetricsRecord {
	if f == nil {
		return domain.MetricsRecord{AsOf: cutoff}
	}

	scoped := f.AsOf(cutoff)

	called := TotalByType(scoped, domain.FlowKindContribution, domain.Date{})
	distributed := TotalByType(scoped, domain.FlowKindDistribution, domain.Date{})
	nav := LatestNav(scoped, domain.Date{})

	rec := domain.MetricsRecord{
		FundID:                f.ID,
		AsOf:                  cutoff,
		TotalContributions:    called,
		TotalDistributions:    distributed,
		CalledCapital:         called,
		NAV:                   nav,
		OutstandingCommitment: OutstandingCommitment(scoped, domain.Date{}),
		InvestmentReturn:      distributed.Add(nav).Sub(called),
	}
	if year, ok := VintageYear(scoped); ok {
		rec.VintageYear = &year
	}

	if !called.IsPositive() {
		return rec
	}

	rec.IRR = CalculateIRR(ParseCashFlowsForIRR(scoped, domain.Date{}), e.irr)
	rec.DPI, rec.RVPI, rec.TVPI = PaidInRatios(called, distributed, nav)
	rec.MOIC = rec.TVPI
	return rec
}
