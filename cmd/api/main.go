package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/pharmakart/notify-gateway/internal/config"
	"github.com/pharmakart/notify-gateway/internal/content"
	"github.com/pharmakart/notify-gateway/internal/dedup"
	"github.com/pharmakart/notify-gateway/internal/handler"
	"github.com/pharmakart/notify-gateway/internal/infra/postgresql"
	"github.com/pharmakart/notify-gateway/internal/infra/postgresql/migrations"
	infraredis "github.com/pharmakart/notify-gateway/internal/infra/redis"
	"github.com/pharmakart/notify-gateway/internal/observability"
	"github.com/pharmakart/notify-gateway/internal/provider"
	"github.com/pharmakart/notify-gateway/internal/repository"
	"github.com/pharmakart/notify-gateway/internal/service"
	"github.com/pharmakart/notify-gateway/internal/transport"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("notify-gateway exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}

	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	logRepo := repository.NewGormWebhookLogRepo(db)
	deviceRepo := repository.NewGormDeviceRepo(db)

	var rdb *goredis.Client
	var gate dedup.Gate
	if cfg.RedisURL != "" {
		rdb, err = infraredis.NewRedis(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		defer rdb.Close()

		gate, err = infraredis.NewRedisGate(rdb, logRepo, cfg.DedupWindow())
		if err != nil {
			return fmt.Errorf("redis dedup gate init failed: %w", err)
		}
	} else {
		logger.Warn("redis not configured, dedup gate falls back to log-store query")
		gate = dedup.NewStoreGate(logRepo, cfg.DedupWindow())
	}

	overrides, err := content.LoadOverrides(cfg.TemplateOverrides)
	if err != nil {
		return fmt.Errorf("template overrides load failed: %w", err)
	}
	resolver := content.NewResolver(overrides)

	push, err := provider.NewFCMProvider(cfg.FCMEndpoint, cfg.FCMServerKey, cfg.PushTimeout())
	if err != nil {
		return fmt.Errorf("fcm provider init failed: %w", err)
	}

	metrics := observability.NewMetrics()
	dispatcher := service.NewDispatcher(deviceRepo, push, cfg.PushTimeout(), logger)

	pipeline, err := service.NewPipeline(service.PipelineParams{
		Logs:             logRepo,
		Gate:             gate,
		Resolver:         resolver,
		Dispatcher:       dispatcher,
		Logger:           logger,
		Metrics:          metrics,
		Secret:           cfg.WebhookSecret,
		EnforceSignature: cfg.SignatureEnforce,
		SkipStatuses:     cfg.SkipStatusSet(),
	})
	if err != nil {
		return fmt.Errorf("pipeline init failed: %w", err)
	}

	auditService, err := service.NewAuditService(logRepo)
	if err != nil {
		return fmt.Errorf("audit service init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterWebhookRoutes(app, pipeline, logger); err != nil {
		return fmt.Errorf("webhook routes init failed: %w", err)
	}
	if err := handler.RegisterAuditLogRoutes(app, auditService); err != nil {
		return fmt.Errorf("audit log routes init failed: %w", err)
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux(metrics),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("notify-gateway api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			return fmt.Errorf("api server stopped: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics listener started", zap.Int("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server stopped: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Warn("api shutdown incomplete", zap.Error(err))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown incomplete", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

func metricsMux(metrics *observability.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
