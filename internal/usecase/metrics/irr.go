package metrics

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

const daysPerYear = 365.25

// Reasons an IRR is undefined. SolveIRR returns them; CalculateIRR folds them into null.
var (
	ErrTooFewFlows    = errors.New("irr: fewer than two flows")
	ErrShortSpan      = errors.New("irr: time span below minimum")
	ErrNoSignChange   = errors.New("irr: series has no sign change")
	ErrFlatDerivative = errors.New("irr: derivative vanished")
	ErrRateOutOfBand  = errors.New("irr: rate outside acceptable band")
	ErrNoConvergence  = errors.New("irr: no convergence within iteration budget")
)

// CalculateIRR returns the annualized internal rate of return of flows, or an invalid
// NullDecimal when the rate is undefined for this data.
func CalculateIRR(flows []Flow, cfg IRRConfig) decimal.NullDecimal {
	rate, err := SolveIRR(flows, cfg)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(rate))
}

// SolveIRR finds r with NPV(r) = sum(a_i / (1+r)^t_i) = 0 by Newton-Raphson, where t_i is
// the distance in years (365.25 days) from the earliest flow. The input is not modified.
func SolveIRR(flows []Flow, cfg IRRConfig) (float64, error) {
	if len(flows) < 2 {
		return 0, ErrTooFewFlows
	}

	sorted := make([]Flow, len(flows))
	copy(sorted, flows)
	sortFlows(sorted)

	first, last := sorted[0].Date, sorted[len(sorted)-1].Date
	if last.DaysSince(first) < cfg.MinDays {
		return 0, ErrShortSpan
	}

	years := make([]float64, len(sorted))
	amounts := make([]float64, len(sorted))
	var hasNeg, hasPos bool
	for i, fl := range sorted {
		years[i] = float64(fl.Date.DaysSince(first)) / daysPerYear
		amounts[i] = fl.Amount.InexactFloat64()
		hasNeg = hasNeg || amounts[i] < 0
		hasPos = hasPos || amounts[i] > 0
	}
	if !hasNeg || !hasPos {
		return 0, ErrNoSignChange
	}

	rate := cfg.Guess
	var clamped bool
	for i := 0; i < cfg.MaxIterations; i++ {
		npv, dnpv := npvAndDerivative(amounts, years, rate)
		if math.IsNaN(npv) || math.IsNaN(dnpv) {
			return 0, ErrNoConvergence
		}
		if math.Abs(npv) < cfg.Precision {
			return inBand(rate, cfg)
		}
		if math.Abs(dnpv) < cfg.Precision {
			return 0, ErrFlatDerivative
		}

		// A step leaving the band only moves halfway to its edge; the band is
		// enforced on the converged rate.
		next := rate - npv/dnpv
		clamped = false
		switch {
		case next < cfg.MinRate:
			next, clamped = (rate+cfg.MinRate)/2, true
		case next > cfg.MaxRate:
			next, clamped = (rate+cfg.MaxRate)/2, true
		}
		if !clamped && math.Abs(next-rate) < cfg.Precision {
			return inBand(next, cfg)
		}
		rate = next
	}
	if clamped {
		// still pushing past the band edge: the root lies outside it
		return 0, ErrRateOutOfBand
	}
	return 0, ErrNoConvergence
}

// npvAndDerivative evaluates NPV(r) and dNPV/dr.
func npvAndDerivative(amounts, years []float64, rate float64) (npv, dnpv float64) {
	base := 1 + rate
	for i, a := range amounts {
		disc := math.Pow(base, years[i])
		npv += a / disc
		dnpv -= years[i] * a / (disc * base)
	}
	return npv, dnpv
}

func inBand(rate float64, cfg IRRConfig) (float64, error) {
	if rate < cfg.MinRate || rate > cfg.MaxRate {
		return 0, ErrRateOutOfBand
	}
	return rate, nil
}
