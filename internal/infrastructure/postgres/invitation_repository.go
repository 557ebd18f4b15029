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

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

// InvitationRepo adaptador de invitaciones.
type InvitationRepo struct {
	q Querier
}

// NewInvitationRepository construye el adaptador.
func NewInvitationRepository(q Querier) *InvitationRepo {
	return &InvitationRepo{q: q}
}

const invitationColumns = `codigo_invitacion, proyecto_id, rol, invitado_por, estado, fecha_expiracion, usos_actuales, max_usos, created_at`

// Create inserta la invitación.
func (r *InvitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	query := `INSERT INTO invitaciones (` + invitationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		inv.Code, inv.ProjectID, string(inv.Role), inv.InvitedBy, inv.Status, inv.ExpiresAt, inv.Uses, inv.MaxUses, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("código duplicado: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert invitación: %w", err)
	}
	return nil
}

// GetByCode obtiene la invitación o nil.
func (r *InvitationRepo) GetByCode(ctx context.Context, code string) (*entity.Invitation, error) {
	return r.scanOne(ctx, `SELECT `+invitationColumns+` FROM invitaciones WHERE codigo_invitacion = $1`, code)
}

// GetByCodeForUpdate obtiene la invitación y bloquea la fila hasta el fin de la tx.
func (r *InvitationRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Invitation, error) {
	return r.scanOne(ctx, `SELECT `+invitationColumns+` FROM invitaciones WHERE codigo_invitacion = $1 FOR UPDATE`, code)
}

// Update persiste estado y usos.
func (r *InvitationRepo) Update(ctx context.Context, inv *entity.Invitation) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invitaciones SET estado = $2, usos_actuales = $3 WHERE codigo_invitacion = $1`,
		inv.Code, inv.Status, inv.Uses,
	)
	if err != nil {
		return fmt.Errorf("update invitación: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProject invitaciones del proyecto, las más antiguas primero.
func (r *InvitationRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.Invitation, error) {
	return r.list(ctx, `SELECT `+invitationColumns+` FROM invitaciones WHERE proyecto_id = $1 ORDER BY created_at, codigo_invitacion`, projectID)
}

// ListAll todas las invitaciones (chequeo de consistencia).
func (r *InvitationRepo) ListAll(ctx context.Context) ([]*entity.Invitation, error) {
	return r.list(ctx, `SELECT `+invitationColumns+` FROM invitaciones ORDER BY created_at, codigo_invitacion`)
}

func (r *InvitationRepo) scanOne(ctx context.Context, query, code string) (*entity.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invitación: %w", err)
	}
	return inv, nil
}

func (r *InvitationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Invitation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invitaciones: %w", err)
	}
	defer rows.Close()
	var out []*entity.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitación: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvitation(row pgx.Row) (*entity.Invitation, error) {
	var (
		inv  entity.Invitation
		role string
	)
	if err := row.Scan(
		&inv.Code, &inv.ProjectID, &role, &inv.InvitedBy, &inv.Status, &inv.ExpiresAt, &inv.Uses, &inv.MaxUses, &inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	inv.Role = parseRole(role)
	return &inv, nil
}
