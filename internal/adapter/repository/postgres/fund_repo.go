package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundmetrics-backend/internal/domain"
)

// fundRepository implements domain.FundRepository
type fundRepository struct {
	db *DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *DB) domain.FundRepository {
	return &fundRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFund(row rowScanner) (*domain.Fund, error) {
	var fund domain.Fund
	var commitmentStr string

	if err := row.Scan(
		&fund.ID,
		&fund.Name,
		&fund.Group,
		&commitmentStr,
		&fund.CreatedAt,
	); err != nil {
		return nil, err
	}

	// Parse commitment (NUMERIC)
	commitment, err := decimal.NewFromString(commitmentStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse commitment: %w", err)
	}
	fund.Commitment = commitment

	return &fund, nil
}

// GetByID retrieves a fund header by its ID
func (r *fundRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fund, error) {
	query := `
		SELECT id, name, fund_group, commitment, created_at
		FROM funds
		WHERE id = $1
	`

	fund, err := scanFund(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("fund %s: %w", id, domain.ErrFundNotFound)
		}
		return nil, fmt.Errorf("failed to get fund by ID: %w", err)
	}

	return fund, nil
}

// Create creates a new fund
func (r *fundRepository) Create(ctx context.Context, fund *domain.Fund) error {
	query := `
		INSERT INTO funds (id, name, fund_group, commitment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		fund.ID,
		fund.Name,
		fund.Group,
		fund.Commitment.String(),
		fund.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fund: %w", err)
	}

	return nil
}

// List retrieves every fund header in creation order
func (r *fundRepository) List(ctx context.Context) ([]*domain.Fund, error) {
	query := `
		SELECT id, name, fund_group, commitment, created_at
		FROM funds
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var funds []*domain.Fund
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}

	return funds, nil
}

// Delete removes a fund; its cash flows and valuations cascade
func (r *fundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM funds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fund: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete fund: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("fund %s: %w", id, domain.ErrFundNotFound)
	}

	return nil
}
