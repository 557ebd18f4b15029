package dto

import "time"

// AddMemberRequest alta directa de un miembro.
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,max=40"`
}

// MembershipResponse fila de proyecto_usuarios.
type MembershipResponse struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	AssignedAt time.Time `json:"assigned_at"`
}

// RoleResponse rol efectivo del usuario en el proyecto (vacío si no es miembro).
type RoleResponse struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

// SyncResponse resultado de una sincronización legacy.
type SyncResponse struct {
	ProjectID string   `json:"project_id"`
	Changed   bool     `json:"changed"`
	Warnings  []string `json:"warnings,omitempty"`
	Created   int      `json:"created,omitempty"`
}
