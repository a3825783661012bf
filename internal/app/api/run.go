// Package api boots the sales HTTP API process.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	saleshttp "github.com/devstore/sales-api/internal/domains/sales/adapters/http"
	salesmemory "github.com/devstore/sales-api/internal/domains/sales/adapters/memory"
	salesobs "github.com/devstore/sales-api/internal/domains/sales/adapters/observability"
	salespostgres "github.com/devstore/sales-api/internal/domains/sales/adapters/persistence/postgres"
	salesapp "github.com/devstore/sales-api/internal/domains/sales/application"
	salesports "github.com/devstore/sales-api/internal/domains/sales/ports"
	"github.com/devstore/sales-api/internal/events"
	platformobservability "github.com/devstore/sales-api/internal/platform/observability"
	platformpostgres "github.com/devstore/sales-api/internal/platform/postgres"
)

// Run boots the sales HTTP API with observability and repositories wired.
func Run(ctx context.Context) error {
	const serviceName = "sales-api"
	cfg := LoadConfig()

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
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

	repo, cleanupRepo := buildSaleRepository(ctx, cfg, logger)
	defer cleanupRepo()

	publisher := events.NewLogPublisher(logger)
	coreService := salesapp.NewService(repo, publisher)
	saleService := salesobs.New(
		coreService,
		salesobs.WithLogger(logger),
		salesobs.WithTracer(instruments.Tracer("internal.sales.application")),
		salesobs.WithMeter(instruments.Meter("internal.sales.application")),
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	saleshttp.RegisterRoutes(router, saleshttp.NewSalesAPI(saleService))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logger.Info("prometheus metrics endpoint enabled")
	}

	addr := ":" + cfg.Port
	logger.Info("sales API listening", slog.String("addr", addr), slog.String("environment", cfg.Environment))
	if err := router.Run(addr); err != nil {
		logger.Error("sales API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildSaleRepository(ctx context.Context, cfg Config, logger *slog.Logger) (salesports.Repository, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory sale repository")
		return salesmemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return salesmemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return salesmemory.NewRepository(), func() {}
	}
	logger.Info("sale repository configured with postgres")
	return salespostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}
