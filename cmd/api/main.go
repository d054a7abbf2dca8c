package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Behnamfe76/docvault/internal/api/http"
	"github.com/Behnamfe76/docvault/internal/api/http/handlers"
	"github.com/Behnamfe76/docvault/internal/auth"
	"github.com/Behnamfe76/docvault/internal/config"
	"github.com/Behnamfe76/docvault/internal/events"
	"github.com/Behnamfe76/docvault/internal/observability"
	"github.com/Behnamfe76/docvault/internal/persistence"
	"github.com/Behnamfe76/docvault/internal/repository"
	"github.com/Behnamfe76/docvault/internal/service"
	"github.com/Behnamfe76/docvault/internal/storage"
	"github.com/Behnamfe76/docvault/internal/worker"
)

const outboundTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	documentRepo, closeStore := openDocumentRepository(ctx, cfg, logger)
	defer closeStore()

	var redisPinger handlers.Pinger
	if cfg.Redis.CacheEnabled() {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		redisPinger = redis
		documentRepo = repository.NewCachedDocumentRepository(documentRepo, redis.Client, cfg.Redis.OwnerCacheTTL, logger)
	}

	httpClient := &http.Client{Timeout: outboundTimeout}
	objectStore, err := storage.NewS3ObjectStore(ctx, cfg.Storage, httpClient)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	tokens, err := auth.NewTokenCodec(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}
	exchanger, err := auth.NewGoogleExchanger(cfg.Google, httpClient)
	if err != nil {
		logger.Fatal("failed to init oauth exchanger", zap.Error(err))
	}
	gate := auth.NewGate(tokens, exchanger, dispatcher, logger)
	guard := auth.NewOwnershipGuard(documentRepo)

	documentService := service.NewDocumentService(service.DocumentDependencies{
		DocumentRepo: documentRepo,
		ObjectStore:  objectStore,
		Guard:        guard,
		Dispatcher:   dispatcher,
		Logger:       logger,
		PresignTTL:   cfg.Storage.PresignTTL,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.UploadMaxBytes,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, documentRepo, redisPinger),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(gate),
		Documents:      handlers.NewDocumentsHandler(documentService),
		AuthMiddleware: auth.NewAuthMiddleware(gate),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func openDocumentRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.DocumentRepository, func()) {
	switch cfg.Metadata.Driver {
	case config.DriverSQLite:
		store, err := persistence.OpenSQLite(ctx, cfg.Metadata.SQLitePath, logger)
		if err != nil {
			logger.Fatal("failed to open sqlite", zap.Error(err))
		}
		return repository.NewSQLiteDocumentRepository(store.DB), func() { _ = store.Close() }
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		return repository.NewDocumentRepository(pg.PoolHandle()), pg.Close
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
