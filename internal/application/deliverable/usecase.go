package deliverable

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Proyectos-api/internal/application/access"
	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/workflow"
)

// CreateInput datos de un entregable nuevo.
type CreateInput struct {
	PhaseID      string
	Title        string
	AssigneeID   *string
	DueDate      *time.Time
	Observations string
}

// View entregable con la propiedad derivada de vencimiento.
type View struct {
	*entity.Deliverable
	Overdue bool
}

// History transiciones y comentarios de un entregable, del más antiguo al más reciente.
type History struct {
	Transitions []*entity.DeliverableTransition
	Comments    []*entity.DeliverableComment
}

// DeliverableUseCase motor del flujo de revisión de entregables.
type DeliverableUseCase struct {
	store   ports.Store
	log     zerolog.Logger
	metrics ports.Metrics
	now     func() time.Time
}

// NewDeliverableUseCase construye el caso de uso. metrics puede ser nil.
func NewDeliverableUseCase(store ports.Store, log zerolog.Logger, metrics ports.Metrics) *DeliverableUseCase {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &DeliverableUseCase{store: store, log: log, metrics: metrics, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *DeliverableUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *DeliverableUseCase) gate(repos ports.Repositories) *access.Gate {
	return access.NewGate(repos, uc.log, uc.metrics)
}

// Create abre un entregable en estado pendiente. Solo roles con capacidad de crear entregables.
func (uc *DeliverableUseCase) Create(ctx context.Context, projectID, userID string, in CreateInput) (*entity.Deliverable, error) {
	if projectID == "" || strings.TrimSpace(in.Title) == "" || in.PhaseID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	d := &entity.Deliverable{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		PhaseID:      in.PhaseID,
		Title:        strings.TrimSpace(in.Title),
		State:        entity.StatePending,
		AssigneeID:   in.AssigneeID,
		DueDate:      in.DueDate,
		Observations: in.Observations,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		project, err := repos.Projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
		}
		if _, err := uc.gate(repos).RequireCapability(ctx, userID, projectID, entity.CapCreateDeliverables); err != nil {
			return err
		}
		phase, err := repos.Phases.GetByID(ctx, in.PhaseID)
		if err != nil {
			return err
		}
		if phase == nil || phase.ProjectID != projectID {
			return fmt.Errorf("fase %s: %w", in.PhaseID, domain.ErrNotFound)
		}
		if in.AssigneeID != nil {
			m, err := repos.Memberships.GetActive(ctx, projectID, *in.AssigneeID, entity.RoleStudent)
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("el asignado no es estudiante activo del proyecto: %w", domain.ErrInvalidInput)
			}
		}
		return repos.Deliverables.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("deliverable_id", d.ID).Str("project_id", projectID).Msg("entregable creado")
	return d, nil
}

// Transition mueve el entregable a target si la arista existe y el rol resuelto del usuario la permite.
// Bloquea la fila y actualiza con chequeo optimista del estado esperado: entre dos transiciones
// concurrentes desde el mismo estado, la perdedora recibe domain.ErrIllegalTransition.
func (uc *DeliverableUseCase) Transition(ctx context.Context, deliverableID, userID string, target entity.WorkflowState) (*entity.Deliverable, error) {
	if deliverableID == "" || userID == "" || !target.Valid() {
		return nil, domain.ErrInvalidInput
	}
	var (
		out  *entity.Deliverable
		from entity.WorkflowState
	)
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		d, err := repos.Deliverables.GetForUpdate(ctx, deliverableID)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("entregable %s: %w", deliverableID, domain.ErrNotFound)
		}
		from = d.State
		if !workflow.CanMove(d.State, target) {
			return fmt.Errorf("%s → %s: %w", d.State, target, domain.ErrIllegalTransition)
		}
		ok, err := uc.gate(repos).AuthorizeLoaded(ctx, d, userID, target)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s → %s: %w", d.State, target, domain.ErrForbiddenTransition)
		}
		actor := userID
		out, err = applyTransition(ctx, repos, d, target, &actor, uc.now())
		return err
	})
	// sin estado de origen (entregable inexistente) no hay arista que contar
	if from != "" {
		uc.metrics.TransitionObserved(string(from), string(target), outcomeOf(err))
	}
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("deliverable_id", deliverableID).
		Str("user_id", userID).
		Str("from", string(from)).
		Str("to", string(target)).
		Msg("transición de entregable")
	return out, nil
}

// applyTransition escribe el nuevo estado y su registro de auditoría. actor nil es el sistema.
func applyTransition(ctx context.Context, repos ports.Repositories, d *entity.Deliverable, target entity.WorkflowState, actor *string, now time.Time) (*entity.Deliverable, error) {
	updated, err := repos.Deliverables.UpdateState(ctx, d.ID, d.State, target, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("estado cambiado concurrentemente: %w", domain.ErrIllegalTransition)
	}
	t := &entity.DeliverableTransition{
		ID:            uuid.New().String(),
		DeliverableID: d.ID,
		FromState:     d.State,
		ToState:       target,
		ActorID:       actor,
		CreatedAt:     now,
	}
	if err := repos.Transitions.Create(ctx, t); err != nil {
		return nil, err
	}
	next := *d
	next.State = target
	next.UpdatedAt = now
	return &next, nil
}

// AddComment agrega un comentario. Exige membresía activa o columna legacy; el área de trabajo
// sola no basta. El tipo es revision cuando el autor revisa o evalúa.
func (uc *DeliverableUseCase) AddComment(ctx context.Context, deliverableID, userID, text string, attachmentRef *string) (*entity.DeliverableComment, error) {
	text = strings.TrimSpace(text)
	if deliverableID == "" || userID == "" || text == "" {
		return nil, domain.ErrInvalidInput
	}
	c := &entity.DeliverableComment{
		ID:            uuid.New().String(),
		DeliverableID: deliverableID,
		UserID:        userID,
		Text:          text,
		AttachmentRef: attachmentRef,
		CreatedAt:     uc.now(),
	}
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		d, err := repos.Deliverables.GetByID(ctx, deliverableID)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("entregable %s: %w", deliverableID, domain.ErrNotFound)
		}
		role, err := membership.ResolveRole(ctx, repos.Memberships, d.ProjectID, userID)
		if err != nil {
			return err
		}
		if role == "" {
			project, err := repos.Projects.GetByID(ctx, d.ProjectID)
			if err != nil {
				return err
			}
			if project == nil {
				return fmt.Errorf("proyecto %s: %w", d.ProjectID, domain.ErrNotFound)
			}
			role = project.LegacyRoleOf(userID)
		}
		if role == "" {
			return domain.ErrForbidden
		}
		c.Type = entity.CommentTypeComment
		if role.Can(entity.CapReviewDeliverables) || role == entity.RoleEvaluator {
			c.Type = entity.CommentTypeReview
		}
		return repos.Comments.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get devuelve el entregable si el usuario puede ver los entregables del proyecto.
func (uc *DeliverableUseCase) Get(ctx context.Context, deliverableID, userID string) (*View, error) {
	repos := uc.store.Repos()
	d, err := repos.Deliverables.GetByID(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.requireView(ctx, repos, userID, d.ProjectID); err != nil {
		return nil, err
	}
	return &View{Deliverable: d, Overdue: d.IsOverdue(uc.now())}, nil
}

// List lista los entregables del proyecto con su marca de vencimiento.
func (uc *DeliverableUseCase) List(ctx context.Context, projectID, userID string) ([]View, error) {
	repos := uc.store.Repos()
	if err := uc.requireView(ctx, repos, userID, projectID); err != nil {
		return nil, err
	}
	list, err := repos.Deliverables.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := make([]View, 0, len(list))
	for _, d := range list {
		out = append(out, View{Deliverable: d, Overdue: d.IsOverdue(now)})
	}
	return out, nil
}

// History devuelve transiciones y comentarios del entregable.
func (uc *DeliverableUseCase) History(ctx context.Context, deliverableID, userID string) (*History, error) {
	repos := uc.store.Repos()
	d, err := repos.Deliverables.GetByID(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.requireView(ctx, repos, userID, d.ProjectID); err != nil {
		return nil, err
	}
	ts, err := repos.Transitions.ListByDeliverable(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	cs, err := repos.Comments.ListByDeliverable(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	return &History{Transitions: ts, Comments: cs}, nil
}

func (uc *DeliverableUseCase) requireView(ctx context.Context, repos ports.Repositories, userID, projectID string) error {
	dec, err := uc.gate(repos).CanViewProjectDeliverables(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if !dec.Allowed {
		return domain.ErrForbidden
	}
	return nil
}

// FinalizeProject cierra el proyecto: pasa a finalizado y el sistema completa cada entregable
// aceptado. Devuelve los entregables completados. Todo en una tx.
func (uc *DeliverableUseCase) FinalizeProject(ctx context.Context, projectID, userID string) ([]*entity.Deliverable, error) {
	var completed []*entity.Deliverable
	now := uc.now()
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		project, err := repos.Projects.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
		}
		if _, err := uc.gate(repos).RequireCapability(ctx, userID, projectID, entity.CapFinalizeProject); err != nil {
			return err
		}
		if project.Status == entity.ProjectStatusFinished {
			return nil
		}
		list, err := repos.Deliverables.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		for _, d := range list {
			if d.State != entity.StateAccepted {
				continue
			}
			locked, err := repos.Deliverables.GetForUpdate(ctx, d.ID)
			if err != nil {
				return err
			}
			if locked == nil || !workflow.AuthorizeSystem(locked.State, entity.StateCompleted) {
				continue
			}
			next, err := applyTransition(ctx, repos, locked, entity.StateCompleted, nil, now)
			if err != nil {
				return err
			}
			completed = append(completed, next)
		}
		return repos.Projects.UpdateStatus(ctx, projectID, entity.ProjectStatusFinished, now)
	})
	if err != nil {
		return nil, err
	}
	for range completed {
		uc.metrics.TransitionObserved(string(entity.StateAccepted), string(entity.StateCompleted), ports.OutcomeOK)
	}
	uc.log.Info().
		Str("project_id", projectID).
		Str("user_id", userID).
		Int("completados", len(completed)).
		Msg("proyecto finalizado")
	return completed, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return ports.OutcomeOK
	case errors.Is(err, domain.ErrIllegalTransition):
		return ports.OutcomeIllegal
	case errors.Is(err, domain.ErrForbiddenTransition):
		return ports.OutcomeForbidden
	}
	return ports.OutcomeError
}
