package entity

import "time"

// Estados de invitación.
const (
	InvitationPending  = "pendiente"
	InvitationAccepted = "aceptada"
	InvitationExpired  = "expirada"
	InvitationRevoked  = "revocada"
)

// Invitation código canjeable que otorga un rol de proyecto a quien lo acepte.
type Invitation struct {
	Code      string
	ProjectID string
	Role      ProjectRole
	InvitedBy string
	Status    string
	ExpiresAt time.Time
	Uses      int
	MaxUses   int
	CreatedAt time.Time
}

// IsExpired informa si la invitación venció respecto a now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Exhausted informa si ya no quedan usos.
func (i *Invitation) Exhausted() bool {
	return i.Uses >= i.MaxUses
}
