package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	platformobservability "github.com/Apurer/go-gin-bookstore/internal/platform/observability"
	stockworkflows "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/workflows/stock"
)

// The worker hosts workflow code only. Stock intake activities run in the API process,
// which owns the live ledger, on the STOCK_INTAKE_ACTIVITIES queue.
func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	const serviceName = "bookstore-worker"
	settings, err := platformobservability.SettingsFromEnv(serviceName)
	if err != nil {
		log.Fatalf("invalid observability settings: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, settings)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, stockworkflows.StockIntakeTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(stockworkflows.StockIntakeWorkflow, workflow.RegisterOptions{Name: stockworkflows.StockIntakeWorkflowName})

	logger.Info("worker listening", slog.String("taskQueue", stockworkflows.StockIntakeTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
