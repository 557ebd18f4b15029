package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// DeliverableRepository define el puerto de persistencia para entregables.
type DeliverableRepository interface {
	Create(ctx context.Context, d *entity.Deliverable) error
	GetByID(ctx context.Context, id string) (*entity.Deliverable, error)
	// GetForUpdate bloquea la fila del entregable (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Deliverable, error)
	// UpdateState cambia el estado solo si el actual es expected. Devuelve false si otro
	// proceso lo cambió antes (chequeo optimista).
	UpdateState(ctx context.Context, id string, expected, next entity.WorkflowState, updatedAt time.Time) (bool, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.Deliverable, error)
}

// TransitionRepository define el puerto para el historial de transiciones (solo inserción).
type TransitionRepository interface {
	Create(ctx context.Context, t *entity.DeliverableTransition) error
	ListByDeliverable(ctx context.Context, deliverableID string) ([]*entity.DeliverableTransition, error)
}

// CommentRepository define el puerto para entregable_comentarios (solo inserción).
type CommentRepository interface {
	Create(ctx context.Context, c *entity.DeliverableComment) error
	ListByDeliverable(ctx context.Context, deliverableID string) ([]*entity.DeliverableComment, error)
}
