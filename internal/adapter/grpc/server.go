package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/fundmetrics-backend/internal/adapter/dto"
	"github.com/simaogato/fundmetrics-backend/internal/domain"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/batch"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/portfolio"
)

// FundService is the application surface the gRPC server exposes
type FundService interface {
	CreateFund(ctx context.Context, in portfolio.CreateFundInput) (*domain.Fund, error)
	RecordCashFlow(ctx context.Context, fundID uuid.UUID, in portfolio.CashFlowInput) (*domain.CashFlow, error)
	RecordValuation(ctx context.Context, fundID uuid.UUID, in portfolio.ValuationInput) (*domain.ValuationSnapshot, error)
	GetMetrics(ctx context.Context, id uuid.UUID, cutoff domain.Date) (domain.MetricsRecord, error)
	GetPortfolioSummary(ctx context.Context, cutoff domain.Date) (*domain.PortfolioSummary, error)
	CalculateMetrics(fund *domain.Fund, cutoff domain.Date) domain.MetricsRecord
}

// Server implements the FundMetricsService gRPC server
type Server struct {
	FundService FundService
}

// NewServer creates a new gRPC server instance
func NewServer(fundService FundService) *Server {
	return &Server{FundService: fundService}
}

var _ FundMetricsServiceServer = (*Server)(nil)

// CreateFund handles the CreateFund RPC
func (s *Server) CreateFund(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.CreateFundRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	// Parse commitment from string to decimal
	commitment, err := domain.ParseAmount(req.Commitment)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid commitment format: %v", err)
	}

	fund, err := s.FundService.CreateFund(ctx, portfolio.CreateFundInput{
		Name:       req.Name,
		Group:      req.Group,
		Commitment: commitment,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return encodeStruct(dto.FromFund(fund))
}

// RecordCashFlow handles the RecordCashFlow RPC
func (s *Server) RecordCashFlow(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.RecordCashFlowRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	fundID, err := dto.ParseID(req.FundID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid fund_id format: %v", err)
	}

	cf, err := req.CashFlow.ToDomain()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid cash flow: %v", err)
	}

	recorded, err := s.FundService.RecordCashFlow(ctx, fundID, portfolio.CashFlowInput{
		Date:              cf.Date,
		Amount:            cf.Amount,
		Kind:              cf.Kind,
		Description:       cf.Description,
		AffectsCommitment: cf.AffectsCommitment,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return encodeStruct(dto.FromCashFlow(recorded))
}

// RecordValuation handles the RecordValuation RPC
func (s *Server) RecordValuation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.RecordValuationRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	fundID, err := dto.ParseID(req.FundID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid fund_id format: %v", err)
	}

	v, err := req.Valuation.ToDomain()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid valuation: %v", err)
	}

	recorded, err := s.FundService.RecordValuation(ctx, fundID, portfolio.ValuationInput{
		Date:   v.Date,
		Amount: v.Amount,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return encodeStruct(dto.FromValuation(recorded))
}

// GetFundMetrics handles the GetFundMetrics RPC
func (s *Server) GetFundMetrics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.GetFundMetricsRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	fundID, err := dto.ParseID(req.FundID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid fund_id format: %v", err)
	}

	cutoff, err := dto.ParseCutoff(req.AsOf)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid as_of format: %v", err)
	}

	rec, err := s.FundService.GetMetrics(ctx, fundID, cutoff)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeStruct(dto.FromMetrics(rec))
}

// GetPortfolioSummary handles the GetPortfolioSummary RPC
func (s *Server) GetPortfolioSummary(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.GetPortfolioSummaryRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	cutoff, err := dto.ParseCutoff(req.AsOf)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid as_of format: %v", err)
	}

	summary, err := s.FundService.GetPortfolioSummary(ctx, cutoff)
	if err != nil {
		return nil, mapError(err)
	}

	return encodeStruct(dto.FromSummary(summary))
}

// CalculateMetrics handles the CalculateMetrics RPC: the fund travels inline and nothing is stored
func (s *Server) CalculateMetrics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.CalculateMetricsRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	fund, err := req.Fund.ToDomain()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid fund: %v", err)
	}

	cutoff, err := dto.ParseCutoff(req.AsOf)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid as_of format: %v", err)
	}

	return encodeStruct(dto.FromMetrics(s.FundService.CalculateMetrics(fund, cutoff)))
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, domain.ErrFundNotFound):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidKind):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.Is(err, batch.ErrRequestTimeout), errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	case errors.Is(err, batch.ErrWorkerInit),
		errors.Is(err, batch.ErrDispatcherClosed),
		errors.Is(err, batch.ErrNotStarted):
		return status.Errorf(codes.Unavailable, "%s", errorMsg)
	}

	// Map common validation errors to InvalidArgument
	if strings.Contains(errorMsg, "cannot be empty") ||
		strings.Contains(errorMsg, "must be non") ||
		strings.Contains(errorMsg, "invalid") ||
		strings.Contains(errorMsg, "must have") {
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	}

	// Map "not found" errors to NotFound
	if strings.Contains(errorMsg, "not found") {
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
