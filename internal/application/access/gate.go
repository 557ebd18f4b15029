package access

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/workflow"
)

// Motivos de acceso, en orden de precedencia.
const (
	ReasonMembership  = "membership"
	ReasonLegacyOwner = "legacy_owner"
	ReasonWorkArea    = "work_area"
	ReasonNone        = "none"
)

// Decision resultado de una consulta de visibilidad.
type Decision struct {
	Allowed bool
	Reason  string
}

// Gate decide visibilidad y derecho de transición sobre los entregables de un proyecto.
// Construido sobre Repos() sirve lecturas; construido sobre los repos de una tx, decide dentro de ella.
type Gate struct {
	repos   ports.Repositories
	log     zerolog.Logger
	metrics ports.Metrics
}

// NewGate construye el gate. metrics puede ser nil.
func NewGate(repos ports.Repositories, log zerolog.Logger, metrics ports.Metrics) *Gate {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &Gate{repos: repos, log: log, metrics: metrics}
}

// CanViewProjectDeliverables OR de membresía activa, columna legacy y área de trabajo activa.
// Reason es el primer camino que concede el acceso.
func (g *Gate) CanViewProjectDeliverables(ctx context.Context, userID, projectID string) (Decision, error) {
	d, err := g.decide(ctx, userID, projectID)
	if err != nil {
		return Decision{}, err
	}
	g.metrics.AccessDecided(d.Reason, d.Allowed)
	g.log.Debug().
		Str("user_id", userID).
		Str("project_id", projectID).
		Bool("allowed", d.Allowed).
		Str("reason", d.Reason).
		Msg("decisión de acceso")
	return d, nil
}

func (g *Gate) decide(ctx context.Context, userID, projectID string) (Decision, error) {
	if userID == "" || projectID == "" {
		return Decision{Reason: ReasonNone}, nil
	}
	project, err := g.repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return Decision{}, err
	}
	if project == nil {
		return Decision{}, fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
	}
	role, err := membership.ResolveRole(ctx, g.repos.Memberships, projectID, userID)
	if err != nil {
		return Decision{}, err
	}
	if role != "" {
		return Decision{Allowed: true, Reason: ReasonMembership}, nil
	}
	if project.LegacyRoleOf(userID) != "" {
		return Decision{Allowed: true, Reason: ReasonLegacyOwner}, nil
	}
	if project.WorkAreaID != nil && *project.WorkAreaID != "" {
		a, err := g.repos.WorkAreas.Get(ctx, userID, *project.WorkAreaID)
		if err != nil {
			return Decision{}, err
		}
		if a != nil && a.Active {
			return Decision{Allowed: true, Reason: ReasonWorkArea}, nil
		}
	}
	return Decision{Reason: ReasonNone}, nil
}

// CanTransitionDeliverable resuelve el rol del usuario y consulta la tabla de aristas.
// La asignación a un área de trabajo nunca basta.
func (g *Gate) CanTransitionDeliverable(ctx context.Context, userID, deliverableID string, target entity.WorkflowState) (bool, error) {
	d, err := g.repos.Deliverables.GetByID(ctx, deliverableID)
	if err != nil {
		return false, err
	}
	if d == nil {
		return false, fmt.Errorf("entregable %s: %w", deliverableID, domain.ErrNotFound)
	}
	return g.AuthorizeLoaded(ctx, d, userID, target)
}

// AuthorizeLoaded igual que CanTransitionDeliverable sobre un entregable ya cargado (y bloqueado).
func (g *Gate) AuthorizeLoaded(ctx context.Context, d *entity.Deliverable, userID string, target entity.WorkflowState) (bool, error) {
	role, err := membership.ResolveRole(ctx, g.repos.Memberships, d.ProjectID, userID)
	if err != nil {
		return false, err
	}
	// sin asignado, cualquier estudiante activo del proyecto
	isAssignee := d.AssigneeID == nil || *d.AssigneeID == userID
	return workflow.Authorize(d.State, target, role, isAssignee), nil
}

// RequireCapability devuelve domain.ErrForbidden si el rol resuelto del usuario no tiene la capacidad.
func (g *Gate) RequireCapability(ctx context.Context, userID, projectID string, c entity.Capability) (entity.ProjectRole, error) {
	role, err := membership.ResolveRole(ctx, g.repos.Memberships, projectID, userID)
	if err != nil {
		return "", err
	}
	if !role.Can(c) {
		return role, domain.ErrForbidden
	}
	return role, nil
}
