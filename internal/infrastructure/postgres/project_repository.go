package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo adaptador de proyectos (usable con pool o tx).
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador.
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

const projectColumns = `id, titulo, estado, estudiante_id, director_id, evaluador_id, area_trabajo_id, created_at, updated_at`

// Create inserta el proyecto.
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	query := `INSERT INTO proyectos (` + projectColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Title, p.Status, p.StudentID, p.DirectorID, p.EvaluatorID, p.WorkAreaID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert proyecto: %w", err)
	}
	return nil
}

// GetByID obtiene el proyecto. nil si no existe.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return r.scanOne(ctx, `SELECT `+projectColumns+` FROM proyectos WHERE id = $1`, id)
}

// GetForUpdate obtiene el proyecto y bloquea la fila (SELECT FOR UPDATE).
func (r *ProjectRepo) GetForUpdate(ctx context.Context, id string) (*entity.Project, error) {
	return r.scanOne(ctx, `SELECT `+projectColumns+` FROM proyectos WHERE id = $1 FOR UPDATE`, id)
}

// UpdateLegacyOwners escribe las tres columnas legacy en un solo UPDATE.
func (r *ProjectRepo) UpdateLegacyOwners(ctx context.Context, p *entity.Project) error {
	query := `
		UPDATE proyectos
		SET estudiante_id = $2, director_id = $3, evaluador_id = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.StudentID, p.DirectorID, p.EvaluatorID, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update columnas legacy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus cambia el estado del proyecto.
func (r *ProjectRepo) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE proyectos SET estado = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update estado proyecto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListIDs lista los IDs de todos los proyectos (chequeo de consistencia).
func (r *ProjectRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM proyectos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list proyectos: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan proyecto: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) scanOne(ctx context.Context, query, id string) (*entity.Project, error) {
	var p entity.Project
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Status, &p.StudentID, &p.DirectorID, &p.EvaluatorID, &p.WorkAreaID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proyecto: %w", err)
	}
	return &p, nil
}
