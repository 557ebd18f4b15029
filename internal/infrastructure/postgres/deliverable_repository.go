package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/repository"
)

var (
	_ repository.DeliverableRepository = (*DeliverableRepo)(nil)
	_ repository.TransitionRepository  = (*TransitionRepo)(nil)
	_ repository.CommentRepository     = (*CommentRepo)(nil)
)

// DeliverableRepo adaptador de entregables.
type DeliverableRepo struct {
	q Querier
}

// NewDeliverableRepository construye el adaptador.
func NewDeliverableRepository(q Querier) *DeliverableRepo {
	return &DeliverableRepo{q: q}
}

const deliverableColumns = `id, proyecto_id, fase_id, titulo, estado, asignado_a, fecha_limite, observaciones, created_at, updated_at`

// Create inserta el entregable.
func (r *DeliverableRepo) Create(ctx context.Context, d *entity.Deliverable) error {
	query := `INSERT INTO entregables (` + deliverableColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.ProjectID, d.PhaseID, d.Title, string(d.State), d.AssigneeID, d.DueDate, d.Observations, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entregable: %w", err)
	}
	return nil
}

// GetByID obtiene el entregable o nil.
func (r *DeliverableRepo) GetByID(ctx context.Context, id string) (*entity.Deliverable, error) {
	return r.scanOne(ctx, `SELECT `+deliverableColumns+` FROM entregables WHERE id = $1`, id)
}

// GetForUpdate obtiene el entregable y bloquea la fila (SELECT FOR UPDATE).
func (r *DeliverableRepo) GetForUpdate(ctx context.Context, id string) (*entity.Deliverable, error) {
	return r.scanOne(ctx, `SELECT `+deliverableColumns+` FROM entregables WHERE id = $1 FOR UPDATE`, id)
}

// UpdateState UPDATE condicionado al estado esperado. false si no afectó filas.
func (r *DeliverableRepo) UpdateState(ctx context.Context, id string, expected, next entity.WorkflowState, updatedAt time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE entregables SET estado = $3, updated_at = $4 WHERE id = $1 AND estado = $2`,
		id, string(expected), string(next), updatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update estado entregable: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByProject entregables del proyecto por fecha de creación.
func (r *DeliverableRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.Deliverable, error) {
	rows, err := r.q.Query(ctx, `SELECT `+deliverableColumns+` FROM entregables WHERE proyecto_id = $1 ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list entregables: %w", err)
	}
	defer rows.Close()
	var out []*entity.Deliverable
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entregable: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DeliverableRepo) scanOne(ctx context.Context, query, id string) (*entity.Deliverable, error) {
	d, err := scanDeliverable(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entregable: %w", err)
	}
	return d, nil
}

func scanDeliverable(row pgx.Row) (*entity.Deliverable, error) {
	var (
		d     entity.Deliverable
		state string
	)
	if err := row.Scan(
		&d.ID, &d.ProjectID, &d.PhaseID, &d.Title, &state, &d.AssigneeID, &d.DueDate, &d.Observations, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.State = entity.WorkflowState(state)
	return &d, nil
}

// TransitionRepo adaptador de entregable_transiciones (solo inserción).
type TransitionRepo struct {
	q Querier
}

// NewTransitionRepository construye el adaptador.
func NewTransitionRepository(q Querier) *TransitionRepo {
	return &TransitionRepo{q: q}
}

// Create inserta la fila de auditoría.
func (r *TransitionRepo) Create(ctx context.Context, t *entity.DeliverableTransition) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO entregable_transiciones (id, entregable_id, estado_anterior, estado_nuevo, usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.DeliverableID, string(t.FromState), string(t.ToState), t.ActorID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transición: %w", err)
	}
	return nil
}

// ListByDeliverable historial de transiciones en orden cronológico.
func (r *TransitionRepo) ListByDeliverable(ctx context.Context, deliverableID string) ([]*entity.DeliverableTransition, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, entregable_id, estado_anterior, estado_nuevo, usuario_id, created_at
		FROM entregable_transiciones WHERE entregable_id = $1 ORDER BY created_at, id`, deliverableID)
	if err != nil {
		return nil, fmt.Errorf("list transiciones: %w", err)
	}
	defer rows.Close()
	var out []*entity.DeliverableTransition
	for rows.Next() {
		var (
			t        entity.DeliverableTransition
			from, to string
		)
		if err := rows.Scan(&t.ID, &t.DeliverableID, &from, &to, &t.ActorID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transición: %w", err)
		}
		t.FromState, t.ToState = entity.WorkflowState(from), entity.WorkflowState(to)
		out = append(out, &t)
	}
	return out, rows.Err()
}

// CommentRepo adaptador de entregable_comentarios (solo inserción).
type CommentRepo struct {
	q Querier
}

// NewCommentRepository construye el adaptador.
func NewCommentRepository(q Querier) *CommentRepo {
	return &CommentRepo{q: q}
}

// Create inserta el comentario.
func (r *CommentRepo) Create(ctx context.Context, c *entity.DeliverableComment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO entregable_comentarios (id, entregable_id, usuario_id, comentario, archivo_adjunto, tipo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.DeliverableID, c.UserID, c.Text, c.AttachmentRef, c.Type, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comentario: %w", err)
	}
	return nil
}

// ListByDeliverable comentarios en orden cronológico.
func (r *CommentRepo) ListByDeliverable(ctx context.Context, deliverableID string) ([]*entity.DeliverableComment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, entregable_id, usuario_id, comentario, archivo_adjunto, tipo, created_at
		FROM entregable_comentarios WHERE entregable_id = $1 ORDER BY created_at, id`, deliverableID)
	if err != nil {
		return nil, fmt.Errorf("list comentarios: %w", err)
	}
	defer rows.Close()
	var out []*entity.DeliverableComment
	for rows.Next() {
		var c entity.DeliverableComment
		if err := rows.Scan(&c.ID, &c.DeliverableID, &c.UserID, &c.Text, &c.AttachmentRef, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comentario: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
