package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/loto-fleet/internal/api/http"
	"github.com/spec-kit/loto-fleet/internal/api/http/handlers"
	"github.com/spec-kit/loto-fleet/internal/config"
	"github.com/spec-kit/loto-fleet/internal/events"
	"github.com/spec-kit/loto-fleet/internal/history"
	"github.com/spec-kit/loto-fleet/internal/observability"
	"github.com/spec-kit/loto-fleet/internal/persistence"
	"github.com/spec-kit/loto-fleet/internal/service"
	"github.com/spec-kit/loto-fleet/internal/store"
	"github.com/spec-kit/loto-fleet/internal/transition"
	"github.com/spec-kit/loto-fleet/internal/worker"
)

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

	blobs, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage backend", zap.Error(err))
	}
	defer blobs.Close()

	engine := transition.NewEngine()
	fleetStore := store.NewFleetStore(engine, blobs, cfg.Storage.BlobKey, logger)
	fleetStore.Load(ctx)

	historyService := history.NewService(fleetStore, cfg.History.CacheTTL())
	dispatcher := events.NewInMemoryDispatcher()
	fleetService := service.NewFleetService(service.FleetDependencies{
		Store:      fleetStore,
		History:    historyService,
		Dispatcher: dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	storagePinger, _ := blobs.(handlers.DependencyPinger)
	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Storage.Backend, storagePinger)
	lockersHandler := handlers.NewLockersHandler(fleetService)
	adminHandler := handlers.NewAdminHandler(fleetService)
	historyHandler := handlers.NewHistoryHandler(historyService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Lockers: lockersHandler,
		Admin:   adminHandler,
		History: historyHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
