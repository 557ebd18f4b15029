package dto

import "time"

// CreateInvitationRequest emisión de invitación. Campos opcionales toman los valores por defecto.
type CreateInvitationRequest struct {
	Role      string     `json:"role" validate:"required,max=40"`
	MaxUses   int        `json:"max_uses" validate:"omitempty,min=1,max=1000"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// InvitationResponse invitación emitida.
type InvitationResponse struct {
	Code      string    `json:"code"`
	ProjectID string    `json:"project_id"`
	Role      string    `json:"role"`
	InvitedBy string    `json:"invited_by"`
	Status    string    `json:"status"`
	Uses      int       `json:"uses"`
	MaxUses   int       `json:"max_uses"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
