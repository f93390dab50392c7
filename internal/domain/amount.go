package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a loosely formatted amount such as "$1,000" or "(250.00)" into a
// decimal. It is the single parse boundary for amounts coming from storage or the wire;
// the metrics engine only ever sees decimal.Decimal.
//
// Accepted: surrounding whitespace, one leading currency symbol ($ € £), thousands
// separators (',', '_', ' '), a leading '+' or '-', and accounting parentheses for negatives.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	negative := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		negative = true
		raw = strings.TrimSpace(raw[1 : len(raw)-1])
	}

	switch {
	case strings.HasPrefix(raw, "-"):
		negative = !negative
		raw = raw[1:]
	case strings.HasPrefix(raw, "+"):
		raw = raw[1:]
	}

	for _, symbol := range []string{"$", "€", "£"} {
		if strings.HasPrefix(raw, symbol) {
			raw = strings.TrimPrefix(raw, symbol)
			break
		}
	}

	cleaned := strings.NewReplacer(",", "", "_", "", " ", "").Replace(raw)
	if cleaned == "" || strings.ContainsAny(cleaned[:1], "+-") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}
