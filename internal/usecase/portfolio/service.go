package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
	"github.com/simaogato/fundmetrics-backend/internal/logger"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/metrics"
)

// BatchDispatcher computes metrics for many funds off the request path
type BatchDispatcher interface {
	Dispatch(ctx context.Context, funds []*domain.Fund, cutoff domain.Date) ([]domain.MetricsRecord, error)
}

// CreateFundInput holds the fields of a new fund
type CreateFundInput struct {
	Name       string
	Group      string
	Commitment decimal.Decimal
}

// CashFlowInput holds the fields of a new ledger entry
type CashFlowInput struct {
	Date              domain.Date
	Amount            decimal.Decimal
	Kind              domain.FlowKind
	Description       string
	AffectsCommitment bool
}

// ValuationInput holds the fields of a new valuation snapshot
type ValuationInput struct {
	Date   domain.Date
	Amount decimal.Decimal
}

// Service owns the fund collection and serves its metrics
type Service struct {
	FundRepo      domain.FundRepository
	CashFlowRepo  domain.CashFlowRepository
	ValuationRepo domain.ValuationRepository

	metrics *metrics.Service
	batch   BatchDispatcher
	logger  *logger.Logger
}

// NewService creates a new portfolio Service instance
func NewService(
	fundRepo domain.FundRepository,
	cashFlowRepo domain.CashFlowRepository,
	valuationRepo domain.ValuationRepository,
	metricsService *metrics.Service,
	dispatcher BatchDispatcher,
	log *logger.Logger,
) *Service {
	return &Service{
		FundRepo:      fundRepo,
		CashFlowRepo:  cashFlowRepo,
		ValuationRepo: valuationRepo,
		metrics:       metricsService,
		batch:         dispatcher,
		logger:        log.Named("portfolio"),
	}
}

// CreateFund registers a new fund with an empty ledger
func (s *Service) CreateFund(ctx context.Context, in CreateFundInput) (*domain.Fund, error) {
	fund := &domain.Fund{
		ID:         uuid.New(),
		Name:       in.Name,
		Group:      in.Group,
		Commitment: in.Commitment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := fund.Validate(); err != nil {
		return nil, err
	}

	if err := s.FundRepo.Create(ctx, fund); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Infow("Fund created", "fund_id", fund.ID, "commitment", fund.Commitment.String())
	return fund, nil
}

// RecordCashFlow appends a ledger entry to a fund
// Logic: the fund must exist; date, kind and a non-zero amount are required
func (s *Service) RecordCashFlow(ctx context.Context, fundID uuid.UUID, in CashFlowInput) (*domain.CashFlow, error) {
	cf := &domain.CashFlow{
		ID:                uuid.New(),
		FundID:            fundID,
		Date:              in.Date,
		Amount:            in.Amount,
		Kind:              in.Kind,
		Description:       in.Description,
		AffectsCommitment: in.AffectsCommitment,
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}

	// Verify fund exists
	if _, err := s.FundRepo.GetByID(ctx, fundID); err != nil {
		return nil, err
	}

	if err := s.CashFlowRepo.Add(ctx, cf); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Infow("Cash flow recorded",
		"fund_id", fundID,
		"kind", cf.Kind,
		"date", cf.Date.String(),
		"amount", cf.Amount.String(),
	)
	return cf, nil
}

// RecordValuation adds a valuation snapshot to a fund
// Negative amounts are accepted for impaired positions; this writes no ledger entry
func (s *Service) RecordValuation(ctx context.Context, fundID uuid.UUID, in ValuationInput) (*domain.ValuationSnapshot, error) {
	v := &domain.ValuationSnapshot{
		ID:     uuid.New(),
		FundID: fundID,
		Date:   in.Date,
		Amount: in.Amount,
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	// Verify fund exists
	if _, err := s.FundRepo.GetByID(ctx, fundID); err != nil {
		return nil, err
	}

	if err := s.ValuationRepo.Add(ctx, v); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Infow("Valuation recorded", "fund_id", fundID, "date", v.Date.String(), "amount", v.Amount.String())
	return v, nil
}

// DeleteFund removes a fund with its ledger and snapshots
func (s *Service) DeleteFund(ctx context.Context, id uuid.UUID) error {
	if err := s.FundRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Infow("Fund deleted", "fund_id", id)
	return nil
}

// GetFund loads the full fund aggregate
func (s *Service) GetFund(ctx context.Context, id uuid.UUID) (*domain.Fund, error) {
	fund, err := s.FundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.loadLedger(ctx, fund); err != nil {
		return nil, err
	}
	return fund, nil
}

// ListFunds loads every fund aggregate in creation order
func (s *Service) ListFunds(ctx context.Context) ([]*domain.Fund, error) {
	funds, err := s.FundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	for _, fund := range funds {
		if err := s.loadLedger(ctx, fund); err != nil {
			return nil, err
		}
	}
	return funds, nil
}

// GetMetrics returns the memoized metrics of one fund at cutoff (zero: no limit)
func (s *Service) GetMetrics(ctx context.Context, id uuid.UUID, cutoff domain.Date) (domain.MetricsRecord, error) {
	return s.metrics.Metrics(ctx, id, cutoff, func(ctx context.Context) (*domain.Fund, error) {
		return s.GetFund(ctx, id)
	})
}

// CalculateMetrics runs the engine on a fund that is not part of the collection
func (s *Service) CalculateMetrics(fund *domain.Fund, cutoff domain.Date) domain.MetricsRecord {
	return s.metrics.Engine().CalculateMetrics(fund, cutoff)
}

// GetPortfolioSummary aggregates every fund at cutoff
// Logic:
//   - Per-fund records are computed in one dispatched batch
//   - Money figures are summed across funds
//   - Portfolio DPI / RVPI / TVPI are derived from the sums, not averaged
func (s *Service) GetPortfolioSummary(ctx context.Context, cutoff domain.Date) (*domain.PortfolioSummary, error) {
	funds, err := s.ListFunds(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.batch.Dispatch(ctx, funds, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to compute portfolio metrics: %w", err)
	}
	if len(records) != len(funds) {
		return nil, errors.New("batch returned a result count different from the fund count")
	}

	summary := &domain.PortfolioSummary{
		AsOf:                  cutoff,
		FundCount:             len(funds),
		Commitment:            decimal.Zero,
		CalledCapital:         decimal.Zero,
		Distributions:         decimal.Zero,
		NAV:                   decimal.Zero,
		OutstandingCommitment: decimal.Zero,
		InvestmentReturn:      decimal.Zero,
		Funds:                 records,
	}
	for i, rec := range records {
		summary.Commitment = summary.Commitment.Add(funds[i].Commitment)
		summary.CalledCapital = summary.CalledCapital.Add(rec.CalledCapital)
		summary.Distributions = summary.Distributions.Add(rec.TotalDistributions)
		summary.NAV = summary.NAV.Add(rec.NAV)
		summary.OutstandingCommitment = summary.OutstandingCommitment.Add(rec.OutstandingCommitment)
		summary.InvestmentReturn = summary.InvestmentReturn.Add(rec.InvestmentReturn)
	}
	summary.DPI, summary.RVPI, summary.TVPI = metrics.PaidInRatios(summary.CalledCapital, summary.Distributions, summary.NAV)

	return summary, nil
}

func (s *Service) loadLedger(ctx context.Context, fund *domain.Fund) error {
	flows, err := s.CashFlowRepo.ListByFund(ctx, fund.ID)
	if err != nil {
		return fmt.Errorf("failed to load cash flows of fund %s: %w", fund.ID, err)
	}
	valuations, err := s.ValuationRepo.ListByFund(ctx, fund.ID)
	if err != nil {
		return fmt.Errorf("failed to load valuations of fund %s: %w", fund.ID, err)
	}
	fund.CashFlows = flows
	fund.Valuations = valuations
	return nil
}

// invalidate drops cached metrics after a write. Stale keys are already unreachable
// through the epoch bump, so a failing cache clear is only logged.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.metrics.Invalidate(ctx); err != nil {
		s.logger.Warnw("Failed to clear metrics cache", "error", err)
	}
}
