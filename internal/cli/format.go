package cli

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const undefined = "n/a"

// formatMoney renders a major-unit amount in the currency's own format, e.g. $1,250,000.00
func formatMoney(amount decimal.Decimal, code string) string {
	cur := money.New(0, code).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// formatPercent renders a rate as a percentage with two decimals
func formatPercent(rate decimal.NullDecimal) string {
	if !rate.Valid {
		return undefined
	}
	return rate.Decimal.Shift(2).StringFixed(2) + "%"
}

// formatMultiple renders a ratio such as TVPI as 1.25x
func formatMultiple(ratio decimal.NullDecimal) string {
	if !ratio.Valid {
		return undefined
	}
	return ratio.Decimal.StringFixed(2) + "x"
}
