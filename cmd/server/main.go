package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/fundmetrics-backend/internal/adapter/grpc"
	"github.com/simaogato/fundmetrics-backend/internal/adapter/ops"
	"github.com/simaogato/fundmetrics-backend/internal/adapter/rediscache"
	"github.com/simaogato/fundmetrics-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/fundmetrics-backend/internal/config"
	"github.com/simaogato/fundmetrics-backend/internal/logger"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/batch"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/metrics"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/portfolio"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/seeder"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fundmetrics: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 2. Setup Database
	db, err := postgres.NewDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if cfg.Database.Migrate {
		if err := postgres.Migrate(db); err != nil {
			return err
		}
		log.Infow("Database migrations applied")
	}

	// 3. Initialize Repositories (Postgres) and the metrics cache
	fundRepo := postgres.NewFundRepository(db)
	cashFlowRepo := postgres.NewCashFlowRepository(db)
	valuationRepo := postgres.NewValuationRepository(db)

	if cfg.Database.SeedDemo {
		created, err := seeder.NewDemoSeeder(fundRepo, cashFlowRepo, valuationRepo).Seed(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed demo funds: %w", err)
		}
		log.Infow("Demo funds seeded", "created", created)
	}

	checks := map[string]ops.Check{"postgres": db.PingContext}

	var cache metrics.Cache = metrics.NewMemoryCache()
	if cfg.Redis.Enabled {
		client, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		cache = rediscache.NewMetricsCache(client,
			rediscache.WithPrefix(cfg.Redis.Prefix),
			rediscache.WithTTL(cfg.Redis.TTL),
		)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Infow("Using redis metrics cache", "addr", cfg.Redis.Addr())
	}

	// 4. Initialize Services (Use Cases) and start the batch worker
	engine := metrics.NewEngine(cfg.IRR())
	metricsService := metrics.NewService(engine, cache, log)

	// a shared cache may hold records written under another process's epoch
	dispatcher := batch.NewDispatcher(metricsService.Compute, cfg.Batch(), log,
		batch.WithInit(metricsService.Invalidate),
	)
	if err := dispatcher.Start(ctx); err != nil {
		return err
	}
	defer dispatcher.Stop()

	portfolioService := portfolio.NewService(fundRepo, cashFlowRepo, valuationRepo, metricsService, dispatcher, log)

	// 5. Start gRPC Server with auth and logging interceptors
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.Server.APIToken, healthpb.Health_Check_FullMethodName),
		),
	)
	grpcadapter.RegisterFundMetricsServiceServer(grpcServer, grpcadapter.NewServer(portfolioService))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	grpcAddr := fmt.Sprintf(":%d", cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}

	errCh := make(chan error, 2)

	// Start server in a goroutine
	go func() {
		log.Infow("gRPC server listening", "addr", grpcAddr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("failed to serve gRPC server: %w", err)
		}
	}()

	// 6. Start ops HTTP server (health, readiness, prometheus)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: ops.NewRouter(checks),
	}
	go func() {
		log.Infow("Ops HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to serve ops HTTP: %w", err)
		}
	}()

	// Graceful shutdown
	var serveErr error
	select {
	case <-ctx.Done():
		log.Infow("Shutdown signal received, shutting down gracefully")
	case serveErr = <-errCh:
		log.Errorw("Server failed, shutting down", "error", serveErr)
	}

	waitForShutdown(grpcServer, httpServer, healthServer, cfg.Server.ShutdownTimeout, log)
	return serveErr
}

func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL != "" {
		return rediscache.NewClient(ctx, cfg.URL)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// waitForShutdown drains gRPC and HTTP, bounded by timeout
func waitForShutdown(grpcServer *grpclib.Server, httpServer *http.Server, healthServer *health.Server, timeout time.Duration, log *logger.Logger) {
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warnw("Ops HTTP shutdown failed", "error", err)
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		log.Infow("gRPC server stopped")
	case <-ctx.Done():
		grpcServer.Stop()
		log.Warnw("gRPC graceful stop timed out, forced stop")
	}
}
