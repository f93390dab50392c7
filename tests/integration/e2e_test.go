//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcadapter "github.com/simaogato/fundmetrics-backend/internal/adapter/grpc"
	"github.com/simaogato/fundmetrics-backend/internal/adapter/dto"
	"github.com/simaogato/fundmetrics-backend/internal/adapter/repository/postgres"
)

var (
	db         *postgres.DB
	grpcClient *grpcadapter.Client
	grpcConn   *grpc.ClientConn
)

// TestMain connects to the database and to a running server
func TestMain(m *testing.M) {
	// 1. Connect to Database
	var err error
	db, err = postgres.NewDB(getDBConnectionString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	// 2. Connect to gRPC Server
	grpcConn, err = grpc.NewClient(getGRPCAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}
	grpcClient = grpcadapter.NewClient(grpcConn)

	// Run tests
	code := m.Run()

	grpcConn.Close()
	db.Close()
	os.Exit(code)
}

// getAuthContext returns a context with authorization metadata
func getAuthContext() context.Context {
	token := os.Getenv("API_TOKEN")
	if token == "" {
		token = "dev-token"
	}
	md := metadata.New(map[string]string{
		"authorization": token,
	})
	return metadata.NewOutgoingContext(context.Background(), md)
}

// getDBConnectionString returns the database connection string from environment or defaults
func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "fundmetrics"),
	)
}

// getGRPCAddress returns the gRPC server address from environment or defaults
func getGRPCAddress() string {
	return envOr("GRPC_ADDRESS", "localhost:8080")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// createFund creates a uniquely named fund and removes it when the test ends
func createFund(t *testing.T, ctx context.Context, commitment string) dto.Fund {
	t.Helper()
	fund, err := grpcClient.CreateFund(ctx, dto.CreateFundRequest{
		Name:       "E2E Fund " + uuid.NewString()[:8],
		Group:      "e2e",
		Commitment: commitment,
	})
	require.NoError(t, err)
	require.NotEmpty(t, fund.ID)

	t.Cleanup(func() {
		id, err := uuid.Parse(fund.ID)
		if err != nil {
			return
		}
		// cash flows and valuations go with the fund (ON DELETE CASCADE)
		_ = postgres.NewFundRepository(db).Delete(context.Background(), id)
	})
	return fund
}

func recordFlow(t *testing.T, ctx context.Context, fundID, date, amount, kind string, affects bool) {
	t.Helper()
	_, err := grpcClient.RecordCashFlow(ctx, dto.RecordCashFlowRequest{
		FundID: fundID,
		CashFlow: dto.CashFlow{
			Date:              date,
			Amount:            amount,
			Kind:              kind,
			AffectsCommitment: affects,
		},
	})
	require.NoError(t, err)
}

func recordValuation(t *testing.T, ctx context.Context, fundID, date, amount string) {
	t.Helper()
	_, err := grpcClient.RecordValuation(ctx, dto.RecordValuationRequest{
		FundID:    fundID,
		Valuation: dto.Valuation{Date: date, Amount: amount},
	})
	require.NoError(t, err)
}

func assertDecimal(t *testing.T, expected float64, actual string, msgAndArgs ...interface{}) {
	t.Helper()
	got, err := decimal.NewFromString(actual)
	require.NoError(t, err, msgAndArgs...)
	assert.True(t, got.Equal(decimal.NewFromFloat(expected)), append([]interface{}{"want %v got %s", expected, actual}, msgAndArgs...)...)
}

func ratio(t *testing.T, s *string) float64 {
	t.Helper()
	require.NotNil(t, s)
	v, err := decimal.NewFromString(*s)
	require.NoError(t, err)
	f, _ := v.Float64()
	return f
}

// TestEndToEndFlow tests the complete flow: Create -> Contributions -> Distributions -> Valuation -> Metrics
func TestEndToEndFlow(t *testing.T) {
	ctx := getAuthContext()

	fund := createFund(t, ctx, "1,000,000")
	assertDecimal(t, 1_000_000, fund.Commitment)

	// ----------------------------------------------------------------
	// Step 1: Capital calls (one stored negative, one positive)
	// ----------------------------------------------------------------
	recordFlow(t, ctx, fund.ID, "2020-01-15", "-400000", "contribution", true)
	recordFlow(t, ctx, fund.ID, "2021-01-15", "200000", "CONTRIBUTION", true)

	// ----------------------------------------------------------------
	// Step 2: A distribution and a valuation
	// ----------------------------------------------------------------
	recordFlow(t, ctx, fund.ID, "2022-06-30", "150000", "DISTRIBUTION", false)
	recordValuation(t, ctx, fund.ID, "2022-12-31", "650000")

	// ----------------------------------------------------------------
	// Step 3: Metrics with no cutoff
	// ----------------------------------------------------------------
	m, err := grpcClient.GetFundMetrics(ctx, dto.GetFundMetricsRequest{FundID: fund.ID})
	require.NoError(t, err)

	assert.Equal(t, fund.ID, m.FundID)
	assertDecimal(t, 600_000, m.TotalContributions)
	assertDecimal(t, 150_000, m.TotalDistributions)
	assertDecimal(t, 600_000, m.CalledCapital)
	assertDecimal(t, 650_000, m.NAV)
	assertDecimal(t, 400_000, m.OutstandingCommitment)
	assertDecimal(t, 200_000, m.InvestmentReturn)
	require.NotNil(t, m.VintageYear)
	assert.Equal(t, 2020, *m.VintageYear)

	assert.InDelta(t, 0.25, ratio(t, m.DPI), 1e-6)
	assert.InDelta(t, 650.0/600.0, ratio(t, m.RVPI), 1e-6)
	assert.InDelta(t, 800.0/600.0, ratio(t, m.TVPI), 1e-6)
	assert.InDelta(t, ratio(t, m.TVPI), ratio(t, m.MOIC), 1e-6)
	assert.Greater(t, ratio(t, m.IRR), 0.0)

	// ----------------------------------------------------------------
	// Step 4: Cutoff before the second call hides later entries
	// ----------------------------------------------------------------
	early, err := grpcClient.GetFundMetrics(ctx, dto.GetFundMetricsRequest{FundID: fund.ID, AsOf: "2020-12-31"})
	require.NoError(t, err)
	assert.Equal(t, "2020-12-31", early.AsOf)
	assertDecimal(t, 400_000, early.CalledCapital)
	assertDecimal(t, 0, early.NAV)
	assertDecimal(t, 0, early.TotalDistributions)
	assert.InDelta(t, 0.0, ratio(t, early.DPI), 1e-9)

	// ----------------------------------------------------------------
	// Step 5: A new cash flow invalidates the memoized record
	// ----------------------------------------------------------------
	recordFlow(t, ctx, fund.ID, "2023-03-31", "50000", "DISTRIBUTION", false)

	after, err := grpcClient.GetFundMetrics(ctx, dto.GetFundMetricsRequest{FundID: fund.ID})
	require.NoError(t, err)
	assertDecimal(t, 200_000, after.TotalDistributions)
	// the later distribution rolls the 2022 valuation forward
	assertDecimal(t, 600_000, after.NAV)
	assertDecimal(t, 200_000, after.InvestmentReturn)

	// ----------------------------------------------------------------
	// Step 6: The fund shows up in the portfolio summary
	// ----------------------------------------------------------------
	summary, err := grpcClient.GetPortfolioSummary(ctx, dto.GetPortfolioSummaryRequest{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, summary.FundCount, 1)

	var found bool
	for _, f := range summary.Funds {
		if f.FundID == fund.ID {
			found = true
			assertDecimal(t, 200_000, f.TotalDistributions)
		}
	}
	assert.True(t, found, "fund %s missing from portfolio summary", fund.ID)
}

// TestCalculateMetrics_Stateless computes metrics for a fund that is never stored
func TestCalculateMetrics_Stateless(t *testing.T) {
	ctx := getAuthContext()

	m, err := grpcClient.CalculateMetrics(ctx, dto.CalculateMetricsRequest{
		Fund: dto.Fund{
			Name:       "Ad hoc",
			Commitment: "1000000",
			CashFlows: []dto.CashFlow{
				{Date: "2020-01-01", Amount: "500000", Kind: "CONTRIBUTION", AffectsCommitment: true},
			},
			Valuations: []dto.Valuation{
				{Date: "2021-01-01", Amount: "300000"},
			},
		},
	})
	require.NoError(t, err)

	assertDecimal(t, 500_000, m.OutstandingCommitment)
	assertDecimal(t, -200_000, m.InvestmentReturn)
	assert.InDelta(t, 0.6, ratio(t, m.MOIC), 1e-6)
	assert.Less(t, ratio(t, m.IRR), 0.0)
}

// TestErrors checks the status codes surfaced by the server
func TestErrors(t *testing.T) {
	ctx := getAuthContext()

	t.Run("missing token is unauthenticated", func(t *testing.T) {
		_, err := grpcClient.GetPortfolioSummary(context.Background(), dto.GetPortfolioSummaryRequest{})
		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("unknown fund is not found", func(t *testing.T) {
		_, err := grpcClient.GetFundMetrics(ctx, dto.GetFundMetricsRequest{FundID: uuid.NewString()})
		require.Error(t, err)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("bad date is invalid argument", func(t *testing.T) {
		fund := createFund(t, ctx, "100")
		_, err := grpcClient.RecordCashFlow(ctx, dto.RecordCashFlowRequest{
			FundID:   fund.ID,
			CashFlow: dto.CashFlow{Date: "2020-02-30", Amount: "10", Kind: "CONTRIBUTION"},
		})
		require.Error(t, err)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("negative commitment is invalid argument", func(t *testing.T) {
		_, err := grpcClient.CreateFund(ctx, dto.CreateFundRequest{Name: "Broken", Commitment: "-1"})
		require.Error(t, err)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}
