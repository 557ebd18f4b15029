package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Proyectos-api/internal/application/access"
	"github.com/jhoicas/Proyectos-api/internal/application/auth"
	"github.com/jhoicas/Proyectos-api/internal/application/deliverable"
	"github.com/jhoicas/Proyectos-api/internal/application/invitation"
	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/application/project"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Proyectos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Proyectos-api/internal/interfaces/http"
	"github.com/jhoicas/Proyectos-api/pkg/config"
	"github.com/jhoicas/Proyectos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var store ports.Store
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store = memory.NewStore()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		store = postgres.NewTxRunner(pool)
	}

	var prom *metrics.Prometheus
	var appMetrics ports.Metrics = ports.NoopMetrics{}
	if cfg.Metrics.Enabled {
		prom = metrics.New("proyectos")
		appMetrics = prom
	}

	legacy := membership.NewLegacyAdapter(store, log.Component("legacy"))
	membershipUC := membership.NewMembershipUseCase(store, legacy, log.Component("membership"))
	invitationUC := invitation.NewInvitationUseCase(store, legacy, invitation.Config{
		DefaultTTL:     cfg.Invitation.DefaultTTL,
		DefaultMaxUses: cfg.Invitation.DefaultMaxUses,
	}, log.Component("invitation"), appMetrics)
	deliverableUC := deliverable.NewDeliverableUseCase(store, log.Component("workflow"), appMetrics)
	projectUC := project.NewProjectUseCase(store, legacy, infrapdf.NewMarotoPDFGenerator(cfg.App.Name), log.Component("project"))
	gate := access.NewGate(store.Repos(), log.Component("access"), appMetrics)
	authUC := auth.NewAuthUseCase(store.Repos().Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(httpRouter.AppConfig(cfg.App.Name))
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Proyectos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ProjectUC:     projectUC,
		MembershipUC:  membershipUC,
		Legacy:        legacy,
		InvitationUC:  invitationUC,
		DeliverableUC: deliverableUC,
		Gate:          gate,
		Metrics:       prom,
		Log:           log.Component("http"),
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
