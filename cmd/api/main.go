package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/tryst-events/registration-service/internal/api/http"
	"github.com/tryst-events/registration-service/internal/api/http/handlers"
	"github.com/tryst-events/registration-service/internal/auth"
	"github.com/tryst-events/registration-service/internal/config"
	"github.com/tryst-events/registration-service/internal/events"
	"github.com/tryst-events/registration-service/internal/observability"
	"github.com/tryst-events/registration-service/internal/persistence"
	"github.com/tryst-events/registration-service/internal/service"
	"github.com/tryst-events/registration-service/internal/worker"
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

	if cfg.Auth.JWTSecret == "dev-secret" {
		logger.Warn("JWT_SECRET not set; using development secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := persistence.Open(ctx, *cfg, logger)
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		store.Close(closeCtx)
	}()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   store.Users,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	bookingService := service.NewBookingService(store.Users, dispatcher, logger)
	sessionMiddleware := auth.NewSessionMiddleware(authService.TokenManager(), store.Users)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]persistence.Pinger{
			store.Driver: store.Health,
		}),
		Users:   handlers.NewUsersHandler(authService),
		Booking: handlers.NewBookingHandler(bookingService),
		Session: sessionMiddleware,
		Metrics: metrics,
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()), zap.String("store", store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
