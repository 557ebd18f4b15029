package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Proyectos-api/internal/application/access"
	"github.com/jhoicas/Proyectos-api/internal/application/auth"
	"github.com/jhoicas/Proyectos-api/internal/application/deliverable"
	"github.com/jhoicas/Proyectos-api/internal/application/invitation"
	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/application/project"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ProjectUC     *project.ProjectUseCase
	MembershipUC  *membership.MembershipUseCase
	Legacy        *membership.LegacyAdapter
	InvitationUC  *invitation.InvitationUseCase
	DeliverableUC *deliverable.DeliverableUseCase
	Gate          *access.Gate
	Metrics       *metrics.Prometheus // nil desactiva /metrics
	Log           zerolog.Logger
	JWTSecret     string
}

// AppConfig configuración de la app Fiber. Immutable: los params se guardan tal cual en el
// almacenamiento en memoria y no deben apuntar al buffer que Fiber reutiliza entre peticiones.
func AppConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	}
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	var observer requestObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	api := app.Group("/api", RequestLogger(deps.Log, observer))

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole("coordinador", "admin")
	canView := RequireProjectView("id", deps.Gate)

	projectHandler := NewProjectHandler(deps.ProjectUC, deps.DeliverableUC)
	memberHandler := NewMembershipHandler(deps.MembershipUC, deps.Legacy, deps.Gate)
	invitationHandler := NewInvitationHandler(deps.InvitationUC)
	deliverableHandler := NewDeliverableHandler(deps.DeliverableUC)

	// Proyectos
	projects := protected.Group("/projects")
	projects.Post("/", managers, projectHandler.Create)
	projects.Get("/:id", projectHandler.GetByID)
	projects.Post("/:id/phases", projectHandler.AddPhase)
	projects.Get("/:id/progress", projectHandler.Progress)
	projects.Get("/:id/report", projectHandler.Report)
	projects.Post("/:id/finalize", projectHandler.Finalize)

	// Miembros
	projects.Get("/:id/members", canView, memberHandler.List)
	projects.Post("/:id/members", memberHandler.Add)
	projects.Delete("/:id/members/:userId/:role", memberHandler.Deactivate)
	projects.Get("/:id/role", canView, memberHandler.Role)
	projects.Post("/:id/legacy/sync", managers, memberHandler.SyncLegacy)
	projects.Post("/:id/legacy/backfill", managers, memberHandler.Backfill)

	// Invitaciones
	projects.Post("/:id/invitations", invitationHandler.Create)
	projects.Get("/:id/invitations", invitationHandler.List)
	invitations := protected.Group("/invitations")
	invitations.Post("/:code/accept", invitationHandler.Accept)
	invitations.Delete("/:code", invitationHandler.Revoke)

	// Entregables
	projects.Post("/:id/deliverables", deliverableHandler.Create)
	projects.Get("/:id/deliverables", deliverableHandler.List)
	deliverables := protected.Group("/deliverables")
	deliverables.Get("/:id", deliverableHandler.GetByID)
	deliverables.Post("/:id/transition", deliverableHandler.Transition)
	deliverables.Post("/:id/comments", deliverableHandler.Comment)
	deliverables.Get("/:id/history", deliverableHandler.History)
}
