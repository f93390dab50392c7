package metrics

import "github.com/shopspring/decimal"

// CalculateMOIC returns sum(positive) / sum(|negative|) over a signed series, or null
// when nothing was paid in.
func CalculateMOIC(flows []Flow) decimal.NullDecimal {
	paidIn, returned := splitFlows(flows)
	if !paidIn.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(returned.Div(paidIn))
}

// PaidInRatios returns DPI = distributed/called, RVPI = nav/called and TVPI = DPI + RVPI.
// All three are null together when called capital is zero.
func PaidInRatios(called, distributed, nav decimal.Decimal) (dpi, rvpi, tvpi decimal.NullDecimal) {
	if !called.IsPositive() {
		return dpi, rvpi, tvpi
	}
	d := distributed.Div(called)
	r := nav.Div(called)
	return decimal.NewNullDecimal(d), decimal.NewNullDecimal(r), decimal.NewNullDecimal(d.Add(r))
}
