package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetricsRecord is the derived, never persisted, performance view of one fund at one cutoff.
// Ratio fields are null when undefined for the data, never zero.
type MetricsRecord struct {
	FundID                uuid.UUID           `json:"fundId"`
	AsOf                  Date                `json:"asOf"`
	TotalContributions    decimal.Decimal     `json:"totalContributions"`
	TotalDistributions    decimal.Decimal     `json:"totalDistributions"`
	CalledCapital         decimal.Decimal     `json:"calledCapital"`
	NAV                   decimal.Decimal     `json:"nav"`
	OutstandingCommitment decimal.Decimal     `json:"outstandingCommitment"`
	InvestmentReturn      decimal.Decimal     `json:"investmentReturn"`
	VintageYear           *int                `json:"vintageYear"`
	IRR                   decimal.NullDecimal `json:"irr"`
	MOIC                  decimal.NullDecimal `json:"moic"`
	DPI                   decimal.NullDecimal `json:"dpi"`
	RVPI                  decimal.NullDecimal `json:"rvpi"`
	TVPI                  decimal.NullDecimal `json:"tvpi"`
}

// PortfolioSummary aggregates metrics over every fund at one cutoff
type PortfolioSummary struct {
	AsOf                  Date
	FundCount             int
	Commitment            decimal.Decimal
	CalledCapital         decimal.Decimal
	Distributions         decimal.Decimal
	NAV                   decimal.Decimal
	OutstandingCommitment decimal.Decimal
	InvestmentReturn      decimal.Decimal
	DPI                   decimal.NullDecimal
	RVPI                  decimal.NullDecimal
	TVPI                  decimal.NullDecimal
	Funds                 []MetricsRecord
}
