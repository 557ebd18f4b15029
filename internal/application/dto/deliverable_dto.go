package dto

import "time"

// CreateDeliverableRequest alta de entregable.
type CreateDeliverableRequest struct {
	PhaseID      string     `json:"phase_id" validate:"required,uuid"`
	Title        string     `json:"title" validate:"required,max=300"`
	AssigneeID   *string    `json:"assignee_id" validate:"omitempty,uuid"`
	DueDate      *time.Time `json:"due_date"`
	Observations string     `json:"observations" validate:"max=2000"`
}

// TransitionRequest estado destino.
type TransitionRequest struct {
	Target string `json:"target" validate:"required,oneof=pendiente en_progreso entregado en_revision aceptado rechazado requiere_cambios completado"`
}

// CommentRequest comentario sobre un entregable.
type CommentRequest struct {
	Text          string  `json:"text" validate:"required,max=5000"`
	AttachmentRef *string `json:"attachment_ref" validate:"omitempty,max=500"`
}

// DeliverableResponse entregable con la marca derivada de vencimiento.
type DeliverableResponse struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	PhaseID      string     `json:"phase_id"`
	Title        string     `json:"title"`
	State        string     `json:"state"`
	AssigneeID   *string    `json:"assignee_id,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Observations string     `json:"observations,omitempty"`
	Overdue      bool       `json:"overdue"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CommentResponse comentario persistido.
type CommentResponse struct {
	ID            string    `json:"id"`
	DeliverableID string    `json:"deliverable_id"`
	UserID        string    `json:"user_id"`
	Text          string    `json:"text"`
	AttachmentRef *string   `json:"attachment_ref,omitempty"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransitionResponse fila de auditoría. ActorID nulo = sistema.
type TransitionResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   *string   `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryResponse transiciones y comentarios.
type HistoryResponse struct {
	Transitions []TransitionResponse `json:"transitions"`
	Comments    []CommentResponse    `json:"comments"`
}
