package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/queue-service/internal/api/http"
	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/cache"
	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/persistence"
	"github.com/spec-kit/queue-service/internal/repository"
	"github.com/spec-kit/queue-service/internal/service"
	"github.com/spec-kit/queue-service/internal/worker"
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

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	pointRepo := repository.NewAttentionPointRepository(pool)
	requesterRepo := repository.NewRequesterRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	amqpPublisher := events.NewAMQPPublisher(cfg.AMQP, logger)
	amqpPublisher.Register(dispatcher)
	defer amqpPublisher.Close()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	identityService := service.NewIdentityService(requesterRepo)
	assignmentService := service.NewAssignmentService(pointRepo)
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo: ticketRepo,
		Identity:   identityService,
		Assigner:   assignmentService,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})

	statsCache := cache.NewStatisticsCache(redis.Client, cfg.Stats.CacheTTL(), logger)
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		SnapshotRepo:  snapshotRepo,
		Cache:         statsCache,
		Metrics:       metrics,
		TopRequesters: cfg.Stats.TopRequesters,
	})
	queryService := service.NewQueryService(ticketRepo, pointRepo, analyticsService)
	fleetService := service.NewFleetService(pointRepo)
	authService := service.NewAuthService(cfg.Auth, staffRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:         handlers.NewTicketsHandler(lifecycleService, queryService),
		AttentionPoints: handlers.NewAttentionPointsHandler(queryService, fleetService),
		Requesters:      handlers.NewRequestersHandler(identityService),
		Statistics:      handlers.NewStatisticsHandler(queryService),
		Staff:           handlers.NewStaffHandler(authService),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	logger.Info("service started", zap.String("addr", cfg.App.Addr()))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
