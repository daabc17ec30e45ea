package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amara-ai/assessment-service/internal/application/usecase"
	"github.com/amara-ai/assessment-service/internal/domain/port"
	"github.com/amara-ai/assessment-service/internal/domain/service"
	"github.com/amara-ai/assessment-service/internal/infrastructure/ai"
	"github.com/amara-ai/assessment-service/internal/infrastructure/cache"
	"github.com/amara-ai/assessment-service/internal/infrastructure/config"
	"github.com/amara-ai/assessment-service/internal/infrastructure/messaging"
	"github.com/amara-ai/assessment-service/internal/infrastructure/ml"
	"github.com/amara-ai/assessment-service/internal/infrastructure/postgres"
	grpcpresentation "github.com/amara-ai/assessment-service/internal/presentation/grpc"
	"github.com/amara-ai/assessment-service/internal/presentation/rest"
	"github.com/amara-ai/assessment-service/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      "json",
		ServiceName: "assessment-service",
	})
	slog.SetDefault(logger)

	logger.Info("starting assessment-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Metrics exporter and /metrics handler.
	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: "assessment-service",
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// The default probability model is required. Refuse to start without it.
	model, err := ml.Load(cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load default probability model",
			"path", cfg.ModelPath,
			"error", err,
		)
		os.Exit(1)
	}
	logger.Info("loaded default probability model",
		"path", cfg.ModelPath,
		"version", model.Version(),
	)

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(dbCtx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Wire infrastructure adapters.
	assessmentRepo := postgres.NewAssessmentRepository(pool)
	eventPublisher := messaging.NewKafkaPublisher(
		[]string{cfg.KafkaBroker},
		cfg.KafkaTopic,
		logger,
	)
	defer eventPublisher.Close()

	scoreCache := cache.NewRedisScoreCache(cfg.RedisAddr, cfg.ScoreCacheTTL, logger)
	defer scoreCache.Close()

	// An empty API key selects the neutral stub, keeping dev environments
	// fully offline.
	var aiClient port.AIScoreClient
	if cfg.AIAPIKey != "" {
		aiClient = ai.NewGeminiClient(ai.GeminiConfig{
			APIKey:      cfg.AIAPIKey,
			BaseURL:     cfg.AIBaseURL,
			VisionModel: cfg.AIVisionModel,
			TextModel:   cfg.AITextModel,
		})
		logger.Info("AI collaborators enabled",
			"vision_model", cfg.AIVisionModel,
			"text_model", cfg.AITextModel,
		)
	} else {
		aiClient = ai.NewStubClient(logger)
		logger.Warn("AI_API_KEY not set, using neutral stub scores")
	}

	// Wire domain services.
	featureDeriver := service.NewFeatureDeriver()
	estimator := service.NewProbabilityEstimator(model)
	visionScorer := service.NewVisionScorer(aiClient, scoreCache, assessmentRepo, cfg.VisionTimeout, logger)
	narrativeScorer := service.NewNarrativeScorer(aiClient, scoreCache, assessmentRepo, cfg.NarrativeTimeout, logger)
	fusionEngine := service.NewFusionEngine()

	// Wire use cases.
	assessLoanUC := usecase.NewAssessLoan(
		assessmentRepo, eventPublisher,
		featureDeriver, estimator, visionScorer, narrativeScorer, fusionEngine,
	)
	quickAssessUC := usecase.NewQuickAssess(
		assessmentRepo, eventPublisher,
		featureDeriver, estimator, fusionEngine,
	)
	getAssessmentUC := usecase.NewGetAssessment(assessmentRepo)

	// gRPC server.
	grpcHandler := grpcpresentation.NewAssessmentServiceHandler(assessLoanUC, quickAssessUC, getAssessmentUC, logger)
	grpcServer := grpcpresentation.NewServer(grpcHandler, cfg.GRPCAddress(), logger)

	// HTTP server (health checks and metrics).
	healthHandler := rest.NewHealthHandler(logger)
	httpMux := http.NewServeMux()
	healthHandler.RegisterRoutes(httpMux)
	httpMux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      httpMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("assessment-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down assessment-service")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("assessment-service stopped")
}
