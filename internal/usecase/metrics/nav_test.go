package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

func TestLatestNav_ContributionAfterSnapshot(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{contribution("2022-03-15", 200_000, true)}, valuation("2021-12-31", 1_000_000))

	nav := LatestNav(fund, domain.Date{})

	assert.True(t, nav.Equal(dec(1_200_000)), "got %s", nav)
}

func TestLatestNav_DistributionAfterSnapshot(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{distribution("2022-03-15", 200_000, false)}, valuation("2021-12-31", 1_000_000))

	nav := LatestNav(fund, domain.Date{})

	assert.True(t, nav.Equal(dec(800_000)), "got %s", nav)
}

func TestLatestNav_FlowsOnOrBeforeSnapshotIgnored(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{
		contribution("2021-12-31", 200_000, true),
		distribution("2021-06-30", 50_000, false),
	}, valuation("2021-12-31", 1_000_000))

	assert.True(t, LatestNav(fund, domain.Date{}).Equal(dec(1_000_000)))
}

func TestLatestNav_CutoffBoundsSnapshotAndFlows(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{
		contribution("2022-03-15", 200_000, true),
		contribution("2022-09-01", 100_000, true),
	}, valuation("2022-12-31", 5), valuation("2021-12-31", 1_000_000))

	nav := LatestNav(fund, d("2022-06-30"))

	assert.True(t, nav.Equal(dec(1_200_000)), "got %s", nav)
}

func TestLatestNav_AdjustmentsIgnored(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{adjustment("2022-01-10", 12345)}, valuation("2021-12-31", 100))

	assert.True(t, LatestNav(fund, domain.Date{}).Equal(dec(100)))
}

func TestLatestNav_NoSnapshot(t *testing.T) {
	fund := newFund(0, []domain.CashFlow{contribution("2022-03-15", 200_000, true)})

	assert.True(t, LatestNav(fund, domain.Date{}).IsZero())
	assert.True(t, LatestNav(fund, d("2000-01-01")).IsZero())
	assert.True(t, LatestNav(nil, domain.Date{}).IsZero())
}

func TestLatestNav_ImpairedSnapshot(t *testing.T) {
	fund := newFund(0, nil, valuation("2021-12-31", -5000))

	assert.True(t, LatestNav(fund, domain.Date{}).Equal(dec(-5000)))
}
