package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/fundmetrics-backend/internal/adapter/dto"
)

// Client calls FundMetricsService with dto values
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new Client on cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req and decodes the reply into resp
func (c *Client) Call(ctx context.Context, method string, req, resp interface{}, opts ...grpc.CallOption) error {
	in, err := encodeStruct(req)
	if err != nil {
		return err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return err
	}

	raw, err := protojson.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to decode %s reply: %w", method, err)
	}
	if err := json.Unmarshal(raw, resp); err != nil {
		return fmt.Errorf("failed to decode %s reply: %w", method, err)
	}
	return nil
}

// CreateFund calls the CreateFund RPC
func (c *Client) CreateFund(ctx context.Context, req dto.CreateFundRequest) (dto.Fund, error) {
	var resp dto.Fund
	err := c.Call(ctx, "CreateFund", req, &resp)
	return resp, err
}

// RecordCashFlow calls the RecordCashFlow RPC
func (c *Client) RecordCashFlow(ctx context.Context, req dto.RecordCashFlowRequest) (dto.CashFlow, error) {
	var resp dto.CashFlow
	err := c.Call(ctx, "RecordCashFlow", req, &resp)
	return resp, err
}

// RecordValuation calls the RecordValuation RPC
func (c *Client) RecordValuation(ctx context.Context, req dto.RecordValuationRequest) (dto.Valuation, error) {
	var resp dto.Valuation
	err := c.Call(ctx, "RecordValuation", req, &resp)
	return resp, err
}

// GetFundMetrics calls the GetFundMetrics RPC
func (c *Client) GetFundMetrics(ctx context.Context, req dto.GetFundMetricsRequest) (dto.Metrics, error) {
	var resp dto.Metrics
	err := c.Call(ctx, "GetFundMetrics", req, &resp)
	return resp, err
}

// GetPortfolioSummary calls the GetPortfolioSummary RPC
func (c *Client) GetPortfolioSummary(ctx context.Context, req dto.GetPortfolioSummaryRequest) (dto.PortfolioSummary, error) {
	var resp dto.PortfolioSummary
	err := c.Call(ctx, "GetPortfolioSummary", req, &resp)
	return resp, err
}

// CalculateMetrics calls the CalculateMetrics RPC
func (c *Client) CalculateMetrics(ctx context.Context, req dto.CalculateMetricsRequest) (dto.Metrics, error) {
	var resp dto.Metrics
	err := c.Call(ctx, "CalculateMetrics", req, &resp)
	return resp, err
}
