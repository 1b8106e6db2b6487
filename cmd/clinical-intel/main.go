package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clinical-intel/internal/api"
	"clinical-intel/internal/api/handlers"
	"clinical-intel/internal/app"
	"clinical-intel/internal/metrics"
	"clinical-intel/pkg/config"
	"clinical-intel/pkg/logger"

	"go.uber.org/zap"
)

// @title Clinical Intelligence API
// @version 1.0
// @description Semantic note search, medical term extraction and similar-patient cohort analytics for pediatric clinical data

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting clinical intelligence service")

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.EnablePrometheus()
	}

	ctx := context.Background()
	container, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer container.Close()

	h := api.Handlers{
		Search:     handlers.NewSearchHandler(container.SearchService, appLogger),
		Patient:    handlers.NewPatientHandler(container.PatientService, container.CohortService, appLogger),
		Extraction: handlers.NewExtractionHandler(container.ExtractionService, appLogger),
		Analytics:  handlers.NewAnalyticsHandler(container.AnalyticsService, appLogger),
		Admin:      handlers.NewAdminHandler(container.IndexingService, appLogger),
	}
	server := api.SetupRouter(h, &cfg.Server, metricsHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := server.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := server.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
