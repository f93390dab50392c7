package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    decimal.Decimal
		wantErr bool
	}{
		{name: "Plain integer", input: "1000", want: decimal.NewFromInt(1000)},
		{name: "Dollar with thousands separator", input: "$1,000", want: decimal.NewFromInt(1000)},
		{name: "Negative dollar", input: "-$12,000.50", want: decimal.RequireFromString("-12000.50")},
		{name: "Accounting parentheses", input: "(250.00)", want: decimal.NewFromInt(-250)},
		{name: "Euro with spaces", input: " € 1 500 ", want: decimal.NewFromInt(1500)},
		{name: "Explicit plus", input: "+42", want: decimal.NewFromInt(42)},
		{name: "Empty", input: "  ", wantErr: true},
		{name: "Only symbol", input: "$", wantErr: true},
		{name: "Double sign", input: "--5", wantErr: true},
		{name: "Letters", input: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}
