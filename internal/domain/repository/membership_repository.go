package repository

import (
	"context"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// MembershipRepository define el puerto de persistencia para proyecto_usuarios.
// Las filas nunca se borran; la baja es estado inactivo.
type MembershipRepository interface {
	// Create inserta la membresía. Devuelve domain.ErrDuplicateActiveRole si ya existe
	// una fila activa para (proyecto, usuario, rol).
	Create(ctx context.Context, m *entity.Membership) error
	GetActive(ctx context.Context, projectID, userID string, role entity.ProjectRole) (*entity.Membership, error)
	// CountByTriple cuenta filas (activas o no) para (proyecto, usuario, rol).
	CountByTriple(ctx context.Context, projectID, userID string, role entity.ProjectRole) (int, error)
	// DeactivateTriple marca inactivas todas las filas activas de la tripleta.
	DeactivateTriple(ctx context.Context, projectID, userID string, role entity.ProjectRole) error
	// ListActiveByProject lista membresías activas por fecha_asignacion ascendente.
	ListActiveByProject(ctx context.Context, projectID string) ([]*entity.Membership, error)
	ListActiveByProjectAndUser(ctx context.Context, projectID, userID string) ([]*entity.Membership, error)
	// ListActiveByProjectAndRole lista titulares activos del rol, el más antiguo primero.
	ListActiveByProjectAndRole(ctx context.Context, projectID string, role entity.ProjectRole) ([]*entity.Membership, error)
}
