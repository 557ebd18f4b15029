package repository

import (
	"context"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// WorkAreaRepository define el puerto para usuario_areas_trabajo.
type WorkAreaRepository interface {
	// Get devuelve la asignación (activa o no) o nil.
	Get(ctx context.Context, userID, workAreaID string) (*entity.WorkAreaAssignment, error)
	Create(ctx context.Context, a *entity.WorkAreaAssignment) error
	Activate(ctx context.Context, userID, workAreaID string) error
}
