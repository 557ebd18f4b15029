package repository

import (
	"context"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// PhaseRepository define el puerto para las fases de un proyecto.
type PhaseRepository interface {
	Create(ctx context.Context, phase *entity.Phase) error
	GetByID(ctx context.Context, id string) (*entity.Phase, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.Phase, error)
}
