package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

func TestOutstandingCommitment_FlooredAtZero(t *testing.T) {
	fund := newFund(10_000, []domain.CashFlow{contribution("2020-01-01", -12_000, true)})

	assert.True(t, OutstandingCommitment(fund, domain.Date{}).IsZero())
}

func TestOutstandingCommitment_OnlyFlaggedFlows(t *testing.T) {
	fund := newFund(1_000_000, []domain.CashFlow{
		contribution("2020-01-01", 300_000, true),
		contribution("2020-06-01", 100_000, false),
		distribution("2021-01-01", 50_000, true), // recallable
		distribution("2021-06-01", 80_000, false),
		adjustment("2021-07-01", 5_000),
	})

	got := OutstandingCommitment(fund, domain.Date{})

	assert.True(t, got.Equal(dec(750_000)), "got %s", got)
}

func TestOutstandingCommitment_NotCappedAtCommitment(t *testing.T) {
	fund := newFund(100, []domain.CashFlow{
		contribution("2020-01-01", 50, true),
		distribution("2021-01-01", 80, true),
	})

	assert.True(t, OutstandingCommitment(fund, domain.Date{}).Equal(dec(130)))
}

func TestOutstandingCommitment_Cutoff(t *testing.T) {
	fund := newFund(1000, []domain.CashFlow{
		contribution("2020-01-01", 400, true),
		contribution("2021-01-01", 400, true),
	})

	assert.True(t, OutstandingCommitment(fund, d("2020-12-31")).Equal(dec(600)))
	assert.True(t, OutstandingCommitment(fund, domain.Date{}).Equal(dec(200)))
}

func TestTotalByType_SignAgnostic(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{
		contribution("2020-01-01", 100, false),
		contribution("2020-02-01", -50, false),
		distribution("2021-01-01", -30, false),
		contribution("2024-01-01", 1000, false),
	})

	assert.True(t, TotalByType(fund, domain.FlowKindContribution, d("2023-12-31")).Equal(dec(150)))
	assert.True(t, TotalByType(fund, domain.FlowKindContribution, domain.Date{}).Equal(dec(1150)))
	assert.True(t, TotalByType(fund, domain.FlowKindDistribution, domain.Date{}).Equal(dec(30)))
	assert.True(t, TotalByType(fund, domain.FlowKindAdjustment, domain.Date{}).IsZero())
}

func TestVintageYear_EarliestContribution(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{
		contribution("2019-05-01", 10, false),
		distribution("2015-01-01", 10, false),
		contribution("2018-11-30", 10, false),
		adjustment("2010-01-01", 1),
	})

	year, ok := VintageYear(fund)

	assert.True(t, ok)
	assert.Equal(t, 2018, year)
}

func TestVintageYear_NoContribution(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{distribution("2015-01-01", 10, false)})

	_, ok := VintageYear(fund)
	assert.False(t, ok)

	_, ok = VintageYear(nil)
	assert.False(t, ok)
}
