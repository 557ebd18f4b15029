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

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo adaptador de proyecto_usuarios. El índice único parcial
// proyecto_usuarios_activo_uq garantiza una sola fila activa por tripleta.
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository construye el adaptador.
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

const membershipColumns = `id, proyecto_id, usuario_id, rol, estado, fecha_asignacion`

// Create inserta la membresía.
func (r *MembershipRepo) Create(ctx context.Context, m *entity.Membership) error {
	query := `INSERT INTO proyecto_usuarios (` + membershipColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ProjectID, m.UserID, string(m.Role), m.Status, m.AssignedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateActiveRole
		}
		return fmt.Errorf("insert membresía: %w", err)
	}
	return nil
}

// GetActive devuelve la fila activa de la tripleta o nil.
func (r *MembershipRepo) GetActive(ctx context.Context, projectID, userID string, role entity.ProjectRole) (*entity.Membership, error) {
	query := `
		SELECT ` + membershipColumns + ` FROM proyecto_usuarios
		WHERE proyecto_id = $1 AND usuario_id = $2 AND lower(rol) = $3 AND estado = 'activo'
		LIMIT 1`
	var (
		m    entity.Membership
		rawR string
	)
	err := r.q.QueryRow(ctx, query, projectID, userID, string(role)).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &rawR, &m.Status, &m.AssignedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membresía activa: %w", err)
	}
	m.Role = parseRole(rawR)
	return &m, nil
}

// CountByTriple cuenta filas activas o inactivas de la tripleta.
func (r *MembershipRepo) CountByTriple(ctx context.Context, projectID, userID string, role entity.ProjectRole) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM proyecto_usuarios WHERE proyecto_id = $1 AND usuario_id = $2 AND lower(rol) = $3`,
		projectID, userID, string(role),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count membresías: %w", err)
	}
	return n, nil
}

// DeactivateTriple marca inactivas las filas activas de la tripleta.
func (r *MembershipRepo) DeactivateTriple(ctx context.Context, projectID, userID string, role entity.ProjectRole) error {
	_, err := r.q.Exec(ctx, `
		UPDATE proyecto_usuarios SET estado = 'inactivo'
		WHERE proyecto_id = $1 AND usuario_id = $2 AND lower(rol) = $3 AND estado = 'activo'`,
		projectID, userID, string(role),
	)
	if err != nil {
		return fmt.Errorf("desactivar membresía: %w", err)
	}
	return nil
}

// ListActiveByProject membresías activas, la más antigua primero.
func (r *MembershipRepo) ListActiveByProject(ctx context.Context, projectID string) ([]*entity.Membership, error) {
	return r.list(ctx, `
		SELECT `+membershipColumns+` FROM proyecto_usuarios
		WHERE proyecto_id = $1 AND estado = 'activo'
		ORDER BY fecha_asignacion, id`, projectID)
}

// ListActiveByProjectAndUser roles activos del usuario en el proyecto.
func (r *MembershipRepo) ListActiveByProjectAndUser(ctx context.Context, projectID, userID string) ([]*entity.Membership, error) {
	return r.list(ctx, `
		SELECT `+membershipColumns+` FROM proyecto_usuarios
		WHERE proyecto_id = $1 AND usuario_id = $2 AND estado = 'activo'
		ORDER BY fecha_asignacion, id`, projectID, userID)
}

// ListActiveByProjectAndRole titulares activos del rol, el más antiguo primero.
func (r *MembershipRepo) ListActiveByProjectAndRole(ctx context.Context, projectID string, role entity.ProjectRole) ([]*entity.Membership, error) {
	return r.list(ctx, `
		SELECT `+membershipColumns+` FROM proyecto_usuarios
		WHERE proyecto_id = $1 AND lower(rol) = $2 AND estado = 'activo'
		ORDER BY fecha_asignacion, id`, projectID, string(role))
}

func (r *MembershipRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Membership, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list membresías: %w", err)
	}
	defer rows.Close()
	var out []*entity.Membership
	for rows.Next() {
		var (
			m    entity.Membership
			rawR string
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &rawR, &m.Status, &m.AssignedAt); err != nil {
			return nil, fmt.Errorf("scan membresía: %w", err)
		}
		m.Role = parseRole(rawR)
		out = append(out, &m)
	}
	return out, rows.Err()
}
