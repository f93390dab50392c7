package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// valuationRepository implements domain.ValuationRepository
type valuationRepository struct {
	db *DB
}

// NewValuationRepository creates a new valuation repository
func NewValuationRepository(db *DB) domain.ValuationRepository {
	return &valuationRepository{db: db}
}

// Add creates a new valuation snapshot
func (r *valuationRepository) Add(ctx context.Context, v *domain.ValuationSnapshot) error {
	query := `
		INSERT INTO valuations (id, fund_id, valuation_date, amount)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.FundID,
		v.Date,
		v.Amount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert valuation: %w", err)
	}

	return nil
}

// ListByFund retrieves every snapshot of a fund in creation order
func (r *valuationRepository) ListByFund(ctx context.Context, fundID uuid.UUID) ([]domain.ValuationSnapshot, error) {
	query := `
		SELECT id, fund_id, valuation_date, amount
		FROM valuations
		WHERE fund_id = $1
		ORDER BY seq
	`

	rows, err := r.db.QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list valuations: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.ValuationSnapshot
	for rows.Next() {
		var v domain.ValuationSnapshot
		var amountStr string

		if err := rows.Scan(&v.ID, &v.FundID, &v.Date, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}

		// Parse amount (NUMERIC)
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse valuation amount: %w", err)
		}
		v.Amount = amount

		snapshots = append(snapshots, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate valuations: %w", err)
	}

	return snapshots, nil
}
