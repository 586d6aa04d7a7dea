package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stockflow-api/internal/application/alerts"
	"github.com/jhoicas/stockflow-api/internal/application/auth"
	infrapdf "github.com/jhoicas/stockflow-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stockflow-api/internal/interfaces/http"
	"github.com/jhoicas/stockflow-api/pkg/config"
	"github.com/jhoicas/stockflow-api/pkg/logger"
	"github.com/jhoicas/stockflow-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	levelRepo := postgres.NewInventoryLevelRepository(pool)
	salesRepo := postgres.NewSalesRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	bundleRepo := postgres.NewBundleRepository(pool)

	// Métricas Prometheus (registry propio + colectores de runtime)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	alertMetrics := metrics.New(registry)

	alertEngine := alerts.NewEngine(alerts.Config{
		WindowDays:   cfg.Alerts.WindowDays,
		StaleAfter:   cfg.Alerts.StaleAfter,
		MaxWorkers:   cfg.Alerts.MaxWorkers,
		LeafTimeout:  cfg.Alerts.LeafTimeout,
		RetryBackoff: cfg.Alerts.RetryBackoff,
	}, alerts.Repos{
		Companies: companyRepo,
		Products:  productRepo,
		Levels:    levelRepo,
		Sales:     salesRepo,
		Suppliers: supplierRepo,
		Bundles:   bundleRepo,
	}, alertMetrics)

	reportGenerator := infrapdf.NewAlertReportGenerator()

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "StockFlow API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		AlertEngine:   alertEngine,
		CompanyRepo:   companyRepo,
		ProductRepo:   productRepo,
		WarehouseRepo: warehouseRepo,
		AlertReport:   reportGenerator,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
