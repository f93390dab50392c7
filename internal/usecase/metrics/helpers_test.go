package metrics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

func d(s string) domain.Date { return domain.MustParseDate(s) }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func contribution(on string, amount int64, affects bool) domain.CashFlow {
	return domain.CashFlow{ID: uuid.New(), Date: d(on), Amount: dec(amount), Kind: domain.FlowKindContribution, AffectsCommitment: affects}
}

func distribution(on string, amount int64, affects bool) domain.CashFlow {
	return domain.CashFlow{ID: uuid.New(), Date: d(on), Amount: dec(amount), Kind: domain.FlowKindDistribution, AffectsCommitment: affects}
}

func adjustment(on string, amount int64) domain.CashFlow {
	return domain.CashFlow{ID: uuid.New(), Date: d(on), Amount: dec(amount), Kind: domain.FlowKindAdjustment}
}

func valuation(on string, amount int64) domain.ValuationSnapshot {
	return domain.ValuationSnapshot{ID: uuid.New(), Date: d(on), Amount: dec(amount)}
}

func newFund(commitment int64, flows []domain.CashFlow, vals ...domain.ValuationSnapshot) *domain.Fund {
	return &domain.Fund{
		ID:         uuid.New(),
		Name:       "Test Fund",
		Commitment: dec(commitment),
		CashFlows:  flows,
		Valuations: vals,
	}
}

func flow(on string, amount int64) Flow { return Flow{Date: d(on), Amount: dec(amount)} }

func f64(n decimal.NullDecimal) float64 { return n.Decimal.InexactFloat64() }
