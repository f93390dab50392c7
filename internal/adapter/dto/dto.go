// Package dto defines the JSON shapes exchanged with gRPC clients and the CLI.
// Amounts and ratios travel as decimal strings; dates as YYYY-MM-DD.
package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// Fund is the wire form of a fund, optionally with its ledger
type Fund struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name"`
	Group      string      `json:"group,omitempty"`
	Commitment string      `json:"commitment"`
	CreatedAt  string      `json:"createdAt,omitempty"`
	CashFlows  []CashFlow  `json:"cashFlows,omitempty"`
	Valuations []Valuation `json:"valuations,omitempty"`
}

// CashFlow is the wire form of a ledger entry
type CashFlow struct {
	ID                string `json:"id,omitempty"`
	FundID            string `json:"fundId,omitempty"`
	Date              string `json:"date"`
	Amount            string `json:"amount"`
	Kind              string `json:"kind"`
	Description       string `json:"description,omitempty"`
	AffectsCommitment bool   `json:"affectsCommitment"`
}

// Valuation is the wire form of a valuation snapshot
type Valuation struct {
	ID     string `json:"id,omitempty"`
	FundID string `json:"fundId,omitempty"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// Metrics is the wire form of a metrics record. Undefined ratios are null.
type Metrics struct {
	FundID                string  `json:"fundId"`
	AsOf                  string  `json:"asOf,omitempty"`
	TotalContributions    string  `json:"totalContributions"`
	TotalDistributions    string  `json:"totalDistributions"`
	CalledCapital         string  `json:"calledCapital"`
	NAV                   string  `json:"nav"`
	OutstandingCommitment string  `json:"outstandingCommitment"`
	InvestmentReturn      string  `json:"investmentReturn"`
	VintageYear           *int    `json:"vintageYear"`
	IRR                   *string `json:"irr"`
	MOIC                  *string `json:"moic"`
	DPI                   *string `json:"dpi"`
	RVPI                  *string `json:"rvpi"`
	TVPI                  *string `json:"tvpi"`
}

// PortfolioSummary is the wire form of a portfolio aggregate
type PortfolioSummary struct {
	AsOf                  string    `json:"asOf,omitempty"`
	FundCount             int       `json:"fundCount"`
	Commitment            string    `json:"commitment"`
	CalledCapital         string    `json:"calledCapital"`
	Distributions         string    `json:"distributions"`
	NAV                   string    `json:"nav"`
	OutstandingCommitment string    `json:"outstandingCommitment"`
	InvestmentReturn      string    `json:"investmentReturn"`
	DPI                   *string   `json:"dpi"`
	RVPI                  *string   `json:"rvpi"`
	TVPI                  *string   `json:"tvpi"`
	Funds                 []Metrics `json:"funds"`
}

// CreateFundRequest is the payload of CreateFund
type CreateFundRequest struct {
	Name       string `json:"name"`
	Group      string `json:"group,omitempty"`
	Commitment string `json:"commitment"`
}

// RecordCashFlowRequest is the payload of RecordCashFlow
type RecordCashFlowRequest struct {
	FundID string `json:"fundId"`
	CashFlow
}

// RecordValuationRequest is the payload of RecordValuation
type RecordValuationRequest struct {
	FundID string `json:"fundId"`
	Valuation
}

// GetFundMetricsRequest is the payload of GetFundMetrics
type GetFundMetricsRequest struct {
	FundID string `json:"fundId"`
	AsOf   string `json:"asOf,omitempty"`
}

// GetPortfolioSummaryRequest is the payload of GetPortfolioSummary
type GetPortfolioSummaryRequest struct {
	AsOf string `json:"asOf,omitempty"`
}

// CalculateMetricsRequest is the payload of CalculateMetrics
type CalculateMetricsRequest struct {
	Fund Fund   `json:"fund"`
	AsOf string `json:"asOf,omitempty"`
}

// ParseCutoff parses an optional as-of date; "" means no cutoff
func ParseCutoff(s string) (domain.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(s)
}

// ParseID parses a fund or entry identifier
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

func parseOptionalID(s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, nil
	}
	return ParseID(s)
}

// ToDomain converts a wire fund, including its ledger, into a domain fund.
// A missing id is left nil; a missing commitment is zero.
func (f Fund) ToDomain() (*domain.Fund, error) {
	id, err := parseOptionalID(f.ID)
	if err != nil {
		return nil, err
	}

	commitment := decimal.Zero
	if strings.TrimSpace(f.Commitment) != "" {
		if commitment, err = domain.ParseAmount(f.Commitment); err != nil {
			return nil, fmt.Errorf("commitment: %w", err)
		}
	}

	fund := &domain.Fund{
		ID:         id,
		Name:       f.Name,
		Group:      f.Group,
		Commitment: commitment,
		CashFlows:  make([]domain.CashFlow, 0, len(f.CashFlows)),
		Valuations: make([]domain.ValuationSnapshot, 0, len(f.Valuations)),
	}
	if f.CreatedAt != "" {
		if fund.CreatedAt, err = time.Parse(time.RFC3339, f.CreatedAt); err != nil {
			return nil, fmt.Errorf("createdAt: %w", err)
		}
	}

	for i, c := range f.CashFlows {
		cf, err := c.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("cashFlows[%d]: %w", i, err)
		}
		cf.FundID = id
		fund.CashFlows = append(fund.CashFlows, *cf)
	}
	for i, v := range f.Valuations {
		snapshot, err := v.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("valuations[%d]: %w", i, err)
		}
		snapshot.FundID = id
		fund.Valuations = append(fund.Valuations, *snapshot)
	}
	return fund, nil
}

// ToDomain converts a wire cash flow into a domain cash flow
func (c CashFlow) ToDomain() (*domain.CashFlow, error) {
	id, err := parseOptionalID(c.ID)
	if err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(strings.TrimSpace(c.Date))
	if err != nil {
		return nil, err
	}
	amount, err := domain.ParseAmount(c.Amount)
	if err != nil {
		return nil, err
	}
	kind, err := domain.ParseFlowKind(c.Kind)
	if err != nil {
		return nil, err
	}
	return &domain.CashFlow{
		ID:                id,
		Date:              date,
		Amount:            amount,
		Kind:              kind,
		Description:       c.Description,
		AffectsCommitment: c.AffectsCommitment,
	}, nil
}

// ToDomain converts a wire valuation into a domain snapshot
func (v Valuation) ToDomain() (*domain.ValuationSnapshot, error) {
	id, err := parseOptionalID(v.ID)
	if err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(strings.TrimSpace(v.Date))
	if err != nil {
		return nil, err
	}
	amount, err := domain.ParseAmount(v.Amount)
	if err != nil {
		return nil, err
	}
	return &domain.ValuationSnapshot{ID: id, Date: date, Amount: amount}, nil
}

// FromFund converts a domain fund with its ledger to the wire form
func FromFund(f *domain.Fund) Fund {
	out := Fund{
		ID:         f.ID.String(),
		Name:       f.Name,
		Group:      f.Group,
		Commitment: f.Commitment.String(),
	}
	if !f.CreatedAt.IsZero() {
		out.CreatedAt = f.CreatedAt.UTC().Format(time.RFC3339)
	}
	for i := range f.CashFlows {
		out.CashFlows = append(out.CashFlows, FromCashFlow(&f.CashFlows[i]))
	}
	for i := range f.Valuations {
		out.Valuations = append(out.Valuations, FromValuation(&f.Valuations[i]))
	}
	return out
}

// FromCashFlow converts a domain cash flow to the wire form
func FromCashFlow(c *domain.CashFlow) CashFlow {
	return CashFlow{
		ID:                c.ID.String(),
		FundID:            c.FundID.String(),
		Date:              c.Date.String(),
		Amount:            c.Amount.String(),
		Kind:              string(c.Kind),
		Description:       c.Description,
		AffectsCommitment: c.AffectsCommitment,
	}
}

// FromValuation converts a domain snapshot to the wire form
func FromValuation(v *domain.ValuationSnapshot) Valuation {
	return Valuation{
		ID:     v.ID.String(),
		FundID: v.FundID.String(),
		Date:   v.Date.String(),
		Amount: v.Amount.String(),
	}
}

// FromMetrics converts a metrics record to the wire form
func FromMetrics(rec domain.MetricsRecord) Metrics {
	return Metrics{
		FundID:                rec.FundID.String(),
		AsOf:                  rec.AsOf.String(),
		TotalContributions:    rec.TotalContributions.String(),
		TotalDistributions:    rec.TotalDistributions.String(),
		CalledCapital:         rec.CalledCapital.String(),
		NAV:                   rec.NAV.String(),
		OutstandingCommitment: rec.OutstandingCommitment.String(),
		InvestmentReturn:      rec.InvestmentReturn.String(),
		VintageYear:           rec.VintageYear,
		IRR:                   nullString(rec.IRR),
		MOIC:                  nullString(rec.MOIC),
		DPI:                   nullString(rec.DPI),
		RVPI:                  nullString(rec.RVPI),
		TVPI:                  nullString(rec.TVPI),
	}
}

// FromSummary converts a portfolio summary to the wire form
func FromSummary(s *domain.PortfolioSummary) PortfolioSummary {
	out := PortfolioSummary{
		AsOf:                  s.AsOf.String(),
		FundCount:             s.FundCount,
		Commitment:            s.Commitment.String(),
		CalledCapital:         s.CalledCapital.String(),
		Distributions:         s.Distributions.String(),
		NAV:                   s.NAV.String(),
		OutstandingCommitment: s.OutstandingCommitment.String(),
		InvestmentReturn:      s.InvestmentReturn.String(),
		DPI:                   nullString(s.DPI),
		RVPI:                  nullString(s.RVPI),
		TVPI:                  nullString(s.TVPI),
		Funds:                 make([]Metrics, 0, len(s.Funds)),
	}
	for _, rec := range s.Funds {
		out.Funds = append(out.Funds, FromMetrics(rec))
	}
	return out
}

func nullString(n decimal.NullDecimal) *string {
	if !n.Valid {
		return nil
	}
	s := n.Decimal.String()
	return &s
}
