package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxappraiser/appraiser-api/config"
	"github.com/maxappraiser/appraiser-api/internal/handlers"
	"github.com/maxappraiser/appraiser-api/internal/router"
	"github.com/maxappraiser/appraiser-api/internal/scoring"
	"github.com/maxappraiser/appraiser-api/internal/services"
	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"github.com/maxappraiser/appraiser-api/pkg/metrics"
	"github.com/maxappraiser/appraiser-api/pkg/profiling"
	"github.com/maxappraiser/appraiser-api/pkg/tracing"
	"go.uber.org/zap"
)

// newScorer builds the configured scoring strategy. The second value reports
// the inference circuit breaker state and is nil for scorers without one.
func newScorer(cfg *config.Config) (scoring.Scorer, func() string) {
	switch cfg.Evaluation.Scorer {
	case config.ScorerHeuristic:
		return scoring.NewHeuristicScorer(), nil
	case config.ScorerLLM:
		if cfg.LLM.Token == "" {
			logger.Warn("HF_TOKEN is not set: llm scorer will answer with keyword analysis only")
		}
		s := scoring.NewLLMScorer(cfg.LLM, nil)
		return s, s.BreakerState
	default:
		return scoring.NewRandomScorer(nil), nil
	}
}

const (
	defaultWriteTimeout = 30 * time.Second
	writeTimeoutMargin  = 15 * time.Second
)

// writeTimeout leaves the llm scorer room for every inference attempt and
// the backoff between them
func writeTimeout(cfg *config.Config) time.Duration {
	if cfg.Evaluation.Scorer != config.ScorerLLM {
		return defaultWriteTimeout
	}
	return max(defaultWriteTimeout, scoring.RequestBudget(cfg.LLM)+writeTimeoutMargin)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Appraiser API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("scorer", cfg.Evaluation.Scorer),
	)

	if cfg.IsProduction() && cfg.Evaluation.Scorer == config.ScorerRandom {
		logger.Warn("SCORER=random in production: scores are placeholders, not an assessment")
	}

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (opt-in)
	stopProfiler, err := profiling.Start(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	stopMetrics := make(chan struct{})
	defer close(stopMetrics)
	metrics.RecordInfrastructureMetrics(stopMetrics)

	// Initialize services and handlers
	scorer, breakerState := newScorer(cfg)
	evaluationService := services.NewEvaluationService(scorer, cfg.Evaluation.DefaultCurrency)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	engine := router.New(cfg, router.Handlers{
		Evaluation: handlers.NewEvaluationHandler(evaluationService),
		Health:     handlers.NewHealthHandler(evaluationService.ScorerName(), breakerState),
		Info:       handlers.NewInfoHandler(cfg.Observability.ServiceName, cfg.Observability.ServiceVersion),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited")
}
