package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/repository"
)

var _ repository.PhaseRepository = (*PhaseRepo)(nil)

// PhaseRepo adaptador de fases. peso es NUMERIC y se escanea a decimal.Decimal
// gracias al codec registrado en NewPool.
type PhaseRepo struct {
	q Querier
}

// NewPhaseRepository construye el adaptador.
func NewPhaseRepository(q Querier) *PhaseRepo {
	return &PhaseRepo{q: q}
}

// Create inserta la fase.
func (r *PhaseRepo) Create(ctx context.Context, p *entity.Phase) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO fases (id, proyecto_id, nombre, orden, peso) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.ProjectID, p.Name, p.Order, p.Weight,
	)
	if err != nil {
		return fmt.Errorf("insert fase: %w", err)
	}
	return nil
}

// GetByID obtiene la fase o nil.
func (r *PhaseRepo) GetByID(ctx context.Context, id string) (*entity.Phase, error) {
	var p entity.Phase
	err := r.q.QueryRow(ctx, `SELECT id, proyecto_id, nombre, orden, peso FROM fases WHERE id = $1`, id).
		Scan(&p.ID, &p.ProjectID, &p.Name, &p.Order, &p.Weight)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fase: %w", err)
	}
	return &p, nil
}

// ListByProject fases del proyecto por orden.
func (r *PhaseRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.Phase, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, proyecto_id, nombre, orden, peso FROM fases WHERE proyecto_id = $1 ORDER BY orden, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list fases: %w", err)
	}
	defer rows.Close()
	var out []*entity.Phase
	for rows.Next() {
		var p entity.Phase
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Order, &p.Weight); err != nil {
			return nil, fmt.Errorf("scan fase: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
