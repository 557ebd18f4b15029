package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// ProjectRepository define el puerto de persistencia para Project (DIP).
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	// GetForUpdate bloquea la fila del proyecto (SELECT FOR UPDATE) para serializar
	// escrituras de membresía y columnas legacy.
	GetForUpdate(ctx context.Context, id string) (*entity.Project, error)
	// UpdateLegacyOwners escribe estudiante_id, director_id y evaluador_id en un solo UPDATE.
	UpdateLegacyOwners(ctx context.Context, project *entity.Project) error
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	ListIDs(ctx context.Context) ([]string, error)
}
