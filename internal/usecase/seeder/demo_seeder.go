package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// Fixed UUIDs for the demo funds, so reseeding is a no-op
var (
	DemoBuyoutFundID  = uuid.MustParse("00000000-0000-0000-0000-00000000f001")
	DemoVentureFundID = uuid.MustParse("00000000-0000-0000-0000-00000000f002")
	DemoCreditFundID  = uuid.MustParse("00000000-0000-0000-0000-00000000f003")
)

type demoFlow struct {
	date    string
	amount  int64
	kind    domain.FlowKind
	affects bool
}

type demoValuation struct {
	date   string
	amount int64
}

// DemoFund defines a fund to be seeded together with its ledger
type DemoFund struct {
	ID         uuid.UUID
	Name       string
	Group      string
	Commitment int64
	flows      []demoFlow
	valuations []demoValuation
}

// DemoFunds returns the sample portfolio used in development environments
func DemoFunds() []DemoFund {
	return []DemoFund{
		{
			ID: DemoBuyoutFundID, Name: "Demo Buyout Fund IV", Group: "Buyout", Commitment: 10_000_000,
			flows: []demoFlow{
				{"2018-02-15", -2_500_000, domain.FlowKindContribution, true},
				{"2019-03-01", -3_000_000, domain.FlowKindContribution, true},
				{"2020-06-30", -1_500_000, domain.FlowKindContribution, true},
				{"2021-09-30", 1_200_000, domain.FlowKindDistribution, false},
				{"2022-12-15", 2_800_000, domain.FlowKindDistribution, false},
				{"2023-03-31", 400_000, domain.FlowKindDistribution, true},
			},
			valuations: []demoValuation{
				{"2020-12-31", 7_400_000},
				{"2022-12-31", 6_900_000},
				{"2023-12-31", 6_350_000},
			},
		},
		{
			ID: DemoVentureFundID, Name: "Demo Venture Partners II", Group: "Venture", Commitment: 3_000_000,
			flows: []demoFlow{
				{"2021-01-20", 600_000, domain.FlowKindContribution, true},
				{"2021-11-05", 900_000, domain.FlowKindContribution, true},
				{"2022-08-18", 450_000, domain.FlowKindContribution, true},
				{"2023-02-01", 25_000, domain.FlowKindAdjustment, false},
			},
			valuations: []demoValuation{
				{"2022-12-31", 1_750_000},
				{"2023-12-31", 1_610_000},
			},
		},
		{
			ID: DemoCreditFundID, Name: "Demo Private Credit I", Group: "Credit", Commitment: 5_000_000,
			flows: []demoFlow{
				{"2019-06-01", -4_000_000, domain.FlowKindContribution, true},
				{"2020-06-01", 320_000, domain.FlowKindDistribution, false},
				{"2021-06-01", 320_000, domain.FlowKindDistribution, false},
				{"2022-06-01", 330_000, domain.FlowKindDistribution, false},
				{"2023-06-01", 2_000_000, domain.FlowKindDistribution, false},
			},
			valuations: []demoValuation{
				{"2023-06-30", 2_150_000},
			},
		},
	}
}

// DemoSeeder handles seeding of the sample portfolio
type DemoSeeder struct {
	funds      domain.FundRepository
	cashFlows  domain.CashFlowRepository
	valuations domain.ValuationRepository
	now        func() time.Time
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(funds domain.FundRepository, cashFlows domain.CashFlowRepository, valuations domain.ValuationRepository) *DemoSeeder {
	return &DemoSeeder{
		funds:      funds,
		cashFlows:  cashFlows,
		valuations: valuations,
		now:        time.Now,
	}
}

// Seed ensures every demo fund exists in the database.
// A fund that already exists is left untouched, ledger included.
// It returns the number of funds created.
func (s *DemoSeeder) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, demo := range DemoFunds() {
		// Try to get the fund by ID
		_, err := s.funds.GetByID(ctx, demo.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrFundNotFound) {
			return created, fmt.Errorf("failed to look up demo fund %s: %w", demo.Name, err)
		}

		if err := s.create(ctx, demo); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *DemoSeeder) create(ctx context.Context, demo DemoFund) error {
	fund := &domain.Fund{
		ID:         demo.ID,
		Name:       demo.Name,
		Group:      demo.Group,
		Commitment: decimal.NewFromInt(demo.Commitment),
		CreatedAt:  s.now().UTC(),
	}

	// Validate before creating
	if err := fund.Validate(); err != nil {
		return err
	}
	if err := s.funds.Create(ctx, fund); err != nil {
		return fmt.Errorf("failed to create demo fund %s: %w", demo.Name, err)
	}

	for _, f := range demo.flows {
		cf := &domain.CashFlow{
			ID:                uuid.New(),
			FundID:            demo.ID,
			Date:              domain.MustParseDate(f.date),
			Amount:            decimal.NewFromInt(f.amount),
			Kind:              f.kind,
			Description:       "demo " + string(f.kind),
			AffectsCommitment: f.affects,
		}
		if err := cf.Validate(); err != nil {
			return err
		}
		if err := s.cashFlows.Add(ctx, cf); err != nil {
			return fmt.Errorf("failed to add demo cash flow to %s: %w", demo.Name, err)
		}
	}

	for _, v := range demo.valuations {
		snap := &domain.ValuationSnapshot{
			ID:     uuid.New(),
			FundID: demo.ID,
			Date:   domain.MustParseDate(v.date),
			Amount: decimal.NewFromInt(v.amount),
		}
		if err := s.valuations.Add(ctx, snap); err != nil {
			return fmt.Errorf("failed to add demo valuation to %s: %w", demo.Name, err)
		}
	}
	return nil
}
