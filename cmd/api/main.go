// @title           Inventario Ledger API
// @version         1.0
// @description     Ledger de movimientos de inventario por ubicación con outbox transaccional.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/inventario-ledger/docs"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/outbox"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.DB.AutoMigrate {
		version, err := postgres.Migrate(cfg.DB.ConnectionString())
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Uint("version", version).Msg("migraciones aplicadas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	reads := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	recorder := outbox.NewRecorder(cfg.Kafka.Topic)

	engine := inventory.NewMovementEngine(txRunner, reads, recorder, log, cfg.Inventory.MaxRetries).
		WithPDFGenerator(infrapdf.NewAuditPDFGenerator(""))
	replenishmentUC := inventory.NewReplenishmentUseCase(postgres.NewInventoryLevelRepository(pool), reads.Movements)
	deadLetterUC := outbox.NewDeadLetterUseCase(reads.Outbox)

	registry := metrics.NewRegistry()
	outboxMetrics := metrics.NewOutboxMetrics(registry)

	// Publicador del outbox: goroutine propia, se detiene antes de cerrar el productor y el pool.
	var publisher *outbox.Publisher
	var producer *kafka.Producer
	if cfg.Outbox.Enabled {
		producer, err = kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal().Err(err).Msg("productor Kafka")
		}
		publisher = outbox.NewPublisher(reads.Outbox, producer, outbox.Options{
			Interval:       cfg.Outbox.Interval,
			BatchSize:      cfg.Outbox.BatchSize,
			MaxAttempts:    cfg.Outbox.MaxAttempts,
			BaseBackoff:    cfg.Outbox.BaseBackoff,
			MaxBackoff:     cfg.Outbox.MaxBackoff,
			PublishTimeout: cfg.Outbox.PublishTimeout,
		}, log, outboxMetrics)
		if err := publisher.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("outbox publisher")
		}
	} else {
		log.Warn().Msg("outbox publisher deshabilitado: los eventos quedan PENDING")
	}

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
		Title:    "Inventario Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements:     engine,
		Replenishment: replenishmentUC,
		DeadLetters:   deadLetterUC,
		JWTSecret:     cfg.JWT.Secret,
		Logger:        log,
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
	if publisher != nil {
		publisher.Stop()
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("cierre del productor Kafka")
		}
	}

	log.Info().Msg("aplicación detenida")
}
