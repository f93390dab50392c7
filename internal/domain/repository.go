package domain

import (
	"context"

	"github.com/google/uuid"
)

// FundRepository defines the interface for fund persistence operations
type FundRepository interface {
	// GetByID retrieves a fund header (no ledger) by its ID
	// Returns an error wrapping ErrFundNotFound if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Fund, error)

	// Create creates a new fund
	Create(ctx context.Context, fund *Fund) error

	// List retrieves every fund header ordered by creation
	List(ctx context.Context) ([]*Fund, error)

	// Delete removes a fund together with its ledger and valuations
	Delete(ctx context.Context, id uuid.UUID) error
}

// CashFlowRepository defines the interface for cash flow persistence operations
type CashFlowRepository interface {
	// Add creates a new cash flow
	Add(ctx context.Context, cf *CashFlow) error

	// ListByFund retrieves the ledger of a fund in creation order
	ListByFund(ctx context.Context, fundID uuid.UUID) ([]CashFlow, error)
}

// ValuationRepository defines the interface for valuation snapshot persistence operations
type ValuationRepository interface {
	// Add creates a new valuation snapshot
	Add(ctx context.Context, v *ValuationSnapshot) error

	// ListByFund retrieves all snapshots of a fund in creation order
	ListByFund(ctx context.Context, fundID uuid.UUID) ([]ValuationSnapshot, error)
}
