package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// cashFlowRepository implements domain.CashFlowRepository
type cashFlowRepository struct {
	db *DB
}

// NewCashFlowRepository creates a new cash flow repository
func NewCashFlowRepository(db *DB) domain.CashFlowRepository {
	return &cashFlowRepository{db: db}
}

// Add creates a new cash flow
func (r *cashFlowRepository) Add(ctx context.Context, cf *domain.CashFlow) error {
	query := `
		INSERT INTO cash_flows (id, fund_id, flow_date, amount, kind, description, affects_commitment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		cf.ID,
		cf.FundID,
		cf.Date,
		cf.Amount.String(),
		string(cf.Kind),
		cf.Description,
		cf.AffectsCommitment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cash flow: %w", err)
	}

	return nil
}

// ListByFund retrieves the ledger of a fund in creation order
func (r *cashFlowRepository) ListByFund(ctx context.Context, fundID uuid.UUID) ([]domain.CashFlow, error) {
	query := `
		SELECT id, fund_id, flow_date, amount, kind, description, affects_commitment
		FROM cash_flows
		WHERE fund_id = $1
		ORDER BY seq
	`

	rows, err := r.db.QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash flows: %w", err)
	}
	defer rows.Close()

	var flows []domain.CashFlow
	for rows.Next() {
		var cf domain.CashFlow
		var amountStr, kind string

		if err := rows.Scan(
			&cf.ID,
			&cf.FundID,
			&cf.Date,
			&amountStr,
			&kind,
			&cf.Description,
			&cf.AffectsCommitment,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cash flow: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cash flow amount: %w", err)
		}
		cf.Amount = amount

		if cf.Kind, err = domain.ParseFlowKind(kind); err != nil {
			return nil, fmt.Errorf("failed to parse cash flow kind: %w", err)
		}

		flows = append(flows, cf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash flows: %w", err)
	}

	return flows, nil
}
