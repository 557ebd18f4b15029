package entity

import "time"

// Estados del ciclo de vida de un proyecto.
const (
	ProjectStatusDraft      = "borrador"
	ProjectStatusInProgress = "en_progreso"
	ProjectStatusInReview   = "en_revision"
	ProjectStatusApproved   = "aprobado"
	ProjectStatusFinished   = "finalizado"
)

// Project representa un proyecto académico.
//
// StudentID, DirectorID y EvaluatorID son las columnas legacy de dueño único. Son una caché
// derivada de proyecto_usuarios y solo el adaptador legacy las escribe.
type Project struct {
	ID          string
	Title       string
	Status      string
	StudentID   *string
	DirectorID  *string
	EvaluatorID *string
	WorkAreaID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LegacyOwner devuelve el valor de la columna legacy del rol (nil si no tiene o está vacía).
func (p *Project) LegacyOwner(role ProjectRole) *string {
	switch role {
	case RoleDirector:
		return p.DirectorID
	case RoleStudent:
		return p.StudentID
	case RoleEvaluator:
		return p.EvaluatorID
	}
	return nil
}

// SetLegacyOwner asigna la columna legacy del rol. Ignora roles sin columna.
func (p *Project) SetLegacyOwner(role ProjectRole, userID *string) {
	switch role {
	case RoleDirector:
		p.DirectorID = userID
	case RoleStudent:
		p.StudentID = userID
	case RoleEvaluator:
		p.EvaluatorID = userID
	}
}

// LegacyRoleOf devuelve el primer rol legacy que nombra al usuario, o "" si ninguno.
func (p *Project) LegacyRoleOf(userID string) ProjectRole {
	for _, r := range LegacyRoles {
		if v := p.LegacyOwner(r); v != nil && *v == userID {
			return r
		}
	}
	return ""
}
