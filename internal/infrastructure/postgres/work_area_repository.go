package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/repository"
)

var _ repository.WorkAreaRepository = (*WorkAreaRepo)(nil)

// WorkAreaRepo adaptador de usuario_areas_trabajo.
type WorkAreaRepo struct {
	q Querier
}

// NewWorkAreaRepository construye el adaptador.
func NewWorkAreaRepository(q Querier) *WorkAreaRepo {
	return &WorkAreaRepo{q: q}
}

// Get devuelve la asignación o nil.
func (r *WorkAreaRepo) Get(ctx context.Context, userID, workAreaID string) (*entity.WorkAreaAssignment, error) {
	var a entity.WorkAreaAssignment
	err := r.q.QueryRow(ctx, `
		SELECT usuario_id, area_trabajo_id, es_admin, es_propietario, activo
		FROM usuario_areas_trabajo WHERE usuario_id = $1 AND area_trabajo_id = $2`,
		userID, workAreaID,
	).Scan(&a.UserID, &a.WorkAreaID, &a.IsAdmin, &a.IsOwner, &a.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get área de trabajo: %w", err)
	}
	return &a, nil
}

// Create inserta la asignación.
func (r *WorkAreaRepo) Create(ctx context.Context, a *entity.WorkAreaAssignment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO usuario_areas_trabajo (usuario_id, area_trabajo_id, es_admin, es_propietario, activo)
		VALUES ($1, $2, $3, $4, $5)`,
		a.UserID, a.WorkAreaID, a.IsAdmin, a.IsOwner, a.Active,
	)
	if err != nil {
		return fmt.Errorf("insert área de trabajo: %w", err)
	}
	return nil
}

// Activate reactiva una asignación existente.
func (r *WorkAreaRepo) Activate(ctx context.Context, userID, workAreaID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE usuario_areas_trabajo SET activo = TRUE WHERE usuario_id = $1 AND area_trabajo_id = $2`,
		userID, workAreaID,
	)
	if err != nil {
		return fmt.Errorf("activar área de trabajo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
