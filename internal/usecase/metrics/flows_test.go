package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

func TestParseCashFlowsForIRR_SignConvention(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{
		contribution("2020-01-01", 100, false), // stored positive
		contribution("2020-02-01", -50, false), // stored negative
		distribution("2021-01-01", -30, false), // stored negative
		adjustment("2020-06-01", 999),
	})

	flows := ParseCashFlowsForIRR(fund, domain.Date{})

	require.Len(t, flows, 3)
	assert.True(t, flows[0].Amount.Equal(dec(-100)))
	assert.True(t, flows[1].Amount.Equal(dec(-50)))
	assert.True(t, flows[2].Amount.Equal(dec(30)))
}

func TestParseCashFlowsForIRR_AppendsProjectedNav(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{
		contribution("2022-03-15", 200, false),
		contribution("2020-01-01", -1000, false),
	}, valuation("2019-06-30", 10), valuation("2021-12-31", 1200))

	flows := ParseCashFlowsForIRR(fund, domain.Date{})

	require.Len(t, flows, 3)
	// Sorted by date; terminal value dated at the snapshot, rolled forward by the later call
	assert.Equal(t, d("2020-01-01"), flows[0].Date)
	assert.Equal(t, d("2021-12-31"), flows[1].Date)
	assert.True(t, flows[1].Amount.Equal(dec(1400)))
	assert.Equal(t, d("2022-03-15"), flows[2].Date)
}

func TestParseCashFlowsForIRR_Cutoff(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{
		contribution("2020-01-01", 1000, false),
		distribution("2023-01-01", 500, false),
	}, valuation("2021-12-31", 900), valuation("2022-12-31", 950))

	flows := ParseCashFlowsForIRR(fund, d("2022-06-30"))

	require.Len(t, flows, 2)
	assert.Equal(t, d("2021-12-31"), flows[1].Date)
	assert.True(t, flows[1].Amount.Equal(dec(900)))
}

func TestParseCashFlowsForIRR_NilFund(t *testing.T) {
	assert.Nil(t, ParseCashFlowsForIRR(nil, domain.Date{}))
}
