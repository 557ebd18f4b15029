package entity

import "time"

// Estados de membresía. Las filas nunca se borran: la baja es estado inactivo.
const (
	MembershipActive   = "activo"
	MembershipInactive = "inactivo"
)

// Membership fila de proyecto_usuarios: un usuario con un rol en un proyecto.
type Membership struct {
	ID         string
	ProjectID  string
	UserID     string
	Role       ProjectRole
	Status     string
	AssignedAt time.Time
}

// IsActive informa si la membresía está activa.
func (m *Membership) IsActive() bool {
	return m.Status == MembershipActive
}
