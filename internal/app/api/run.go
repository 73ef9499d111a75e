package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	bookstoreserver "github.com/Apurer/go-gin-bookstore/go"

	catalogcache "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/cache"
	catalogmemory "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/persistence/postgres"
	catalogsqlite "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/persistence/sqlite"
	catalogports "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	invmemory "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/memory"
	invkafka "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/messaging/kafka"
	invlogpub "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/messaging/logpub"
	invrabbitmq "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/messaging/rabbitmq"
	invobs "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/observability"
	invpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/persistence/postgres"
	invsqlite "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/persistence/sqlite"
	invworkflows "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/workflows"
	invapp "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application"
	invports "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	platformcache "github.com/Apurer/go-gin-bookstore/internal/platform/cache"
	"github.com/Apurer/go-gin-bookstore/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-bookstore/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
	platformsqlite "github.com/Apurer/go-gin-bookstore/internal/platform/sqlite"
	stockactivities "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/activities/stock"
	"github.com/Apurer/go-gin-bookstore/internal/platform/temporal/sequences"
)

// Run boots the Bookstore HTTP API with observability, storage, events and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores := buildStorage(ctx, cfg, logger)
	defer stores.cleanup()

	catalogCache := platformcache.New(ctx, platformcache.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		LocalSize:     cfg.CatalogCacheSize,
	}, logger)
	defer catalogCache.Close()
	catalogRepo := catalogcache.NewRepository(stores.catalog, catalogCache, cfg.CatalogCacheTTL, logger)

	publisher, closePublisher := buildPublisher(cfg, logger)
	defer closePublisher()

	coreService := invapp.NewService(
		catalogRepo,
		stores.store,
		invapp.WithIdempotencyStore(stores.idempotency),
		invapp.WithPublisher(publisher),
		invapp.WithLogger(logger),
	)
	service := invobs.New(
		coreService,
		invobs.WithLogger(logger),
		invobs.WithTracer(instruments.Tracer("internal.inventory.application")),
		invobs.WithMeter(instruments.Meter("internal.inventory.application")),
	)
	if err := service.Load(ctx); err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	if cfg.SeedCatalog {
		if err := seedCatalog(ctx, service, logger); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	var stockWorkflows invports.WorkflowOrchestrator = invworkflows.NewInlineStockWorkflows(service)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline stock intake", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		activityWorker := newActivityWorker(temporalClient, stockactivities.NewActivities(service, catalogRepo))
		if err := activityWorker.Start(); err != nil {
			logger.Warn("Temporal activity worker failed to start, running inline stock intake", slog.String("error", err.Error()))
		} else {
			defer activityWorker.Stop()
			stockWorkflows = invworkflows.NewTemporalStockWorkflows(temporalClient)
			logger.Info("Temporal workflows enabled",
				slog.String("namespace", cfg.TemporalNamespace),
				slog.String("activityQueue", sequences.StockIntakeActivityTaskQueue),
			)
		}
	}

	releaserCtx, stopReleaser := context.WithCancel(ctx)
	defer stopReleaser()
	go runCartReleaser(releaserCtx, service, cfg.CartIdle, cfg.CartReleaseInterval, logger)

	handlers := bookstoreserver.ApiHandleFunctions{
		BooksAPI: bookstoreserver.NewBooksAPI(service),
		StockAPI: bookstoreserver.NewStockAPI(service, stockWorkflows),
		CartAPI:  bookstoreserver.NewCartAPI(service),
		AdminAPI: bookstoreserver.NewAdminAPI(service, cfg.CartIdle),
	}
	router := bookstoreserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(apiServiceName))

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Bookstore API listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Bookstore API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Bookstore API shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

type storage struct {
	catalog     catalogports.Repository
	store       invports.Store
	idempotency invports.IdempotencyStore
	cleanup     func()
}

// buildStorage prefers postgres, then sqlite, then memory. Every fallback is logged.
func buildStorage(ctx context.Context, cfg Config, logger *slog.Logger) storage {
	if cfg.PostgresDSN != "" {
		if s, err := postgresStorage(ctx, cfg.PostgresDSN); err != nil {
			logger.Warn("failed to configure postgres storage, trying next backend", slog.String("error", err.Error()))
		} else {
			logger.Info("inventory storage configured with postgres")
			return s
		}
	} else {
		logger.Warn("POSTGRES_DSN not set, skipping postgres storage")
	}
	if cfg.SQLitePath != "" {
		db, err := platformsqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Warn("failed to open sqlite, falling back to memory", slog.String("path", cfg.SQLitePath), slog.String("error", err.Error()))
		} else {
			logger.Info("inventory storage configured with sqlite", slog.String("path", cfg.SQLitePath))
			return storage{
				catalog:     catalogsqlite.NewRepository(db),
				store:       invsqlite.NewStore(db),
				idempotency: invsqlite.NewIdempotencyStore(db),
				cleanup:     func() { _ = db.Close() },
			}
		}
	}
	logger.Warn("falling back to in-memory inventory storage")
	return storage{
		catalog:     catalogmemory.NewRepository(),
		store:       invmemory.NewStore(),
		idempotency: invmemory.NewIdempotencyStore(),
		cleanup:     func() {},
	}
}

func postgresStorage(ctx context.Context, dsn string) (storage, error) {
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		return storage{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return storage{}, err
	}
	if err := migrations.Run(db); err != nil {
		_ = sqlDB.Close()
		return storage{}, fmt.Errorf("failed to migrate postgres: %w", err)
	}
	return storage{
		catalog:     catalogpostgres.NewRepository(db),
		store:       invpostgres.NewStore(db),
		idempotency: invpostgres.NewIdempotencyStore(db),
		cleanup:     func() { _ = sqlDB.Close() },
	}, nil
}

// buildPublisher dials the configured broker; the structured log is the fallback.
func buildPublisher(cfg Config, logger *slog.Logger) (invports.EventPublisher, func()) {
	switch cfg.EventsBackend {
	case EventsBackendKafka:
		publisher, err := invkafka.Dial(invkafka.Config{
			Brokers:    cfg.KafkaBrokers,
			StockTopic: cfg.KafkaStockTopic,
			CartTopic:  cfg.KafkaCartTopic,
			Acks:       cfg.KafkaAcks,
			Retries:    3,
		}, logger)
		if err != nil {
			logger.Warn("kafka unavailable, logging inventory events instead", slog.String("error", err.Error()))
			break
		}
		logger.Info("inventory events published to kafka", slog.Any("brokers", cfg.KafkaBrokers))
		return publisher, closeWith(publisher.Close, logger)
	case EventsBackendRabbitMQ:
		publisher, err := invrabbitmq.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			logger.Warn("rabbitmq unavailable, logging inventory events instead", slog.String("error", err.Error()))
			break
		}
		logger.Info("inventory events published to rabbitmq", slog.String("exchange", cfg.RabbitMQExchange))
		return publisher, closeWith(publisher.Close, logger)
	}
	return invlogpub.New(logger), func() {}
}

func closeWith(closeFn func() error, logger *slog.Logger) func() {
	return func() {
		if err := closeFn(); err != nil {
			logger.Warn("failed to close event publisher", slog.String("error", err.Error()))
		}
	}
}

func newActivityWorker(c client.Client, activities *stockactivities.Activities) worker.Worker {
	w := worker.New(c, sequences.StockIntakeActivityTaskQueue, worker.Options{})
	w.RegisterActivityWithOptions(activities.ReceiveStock, activity.RegisterOptions{Name: stockactivities.ReceiveStockActivityName})
	w.RegisterActivityWithOptions(activities.WarmCatalog, activity.RegisterOptions{Name: stockactivities.WarmCatalogActivityName})
	return w
}

// runCartReleaser returns idle carts to the ledger every interval until ctx ends.
func runCartReleaser(ctx context.Context, service invports.Service, idle, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := service.ReleaseIdleCarts(ctx, idle)
			if err != nil {
				logger.Warn("idle cart release incomplete", slog.Int("released", released), slog.String("error", err.Error()))
				continue
			}
			if released > 0 {
				logger.Info("idle carts released", slog.Int("carts", released))
			}
		}
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
