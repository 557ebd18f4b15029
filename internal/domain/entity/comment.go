package entity

import "time"

// Tipos de comentario.
const (
	CommentTypeComment = "comentario"
	CommentTypeReview  = "revision"
)

// DeliverableComment comentario de un usuario sobre un entregable (solo inserción).
type DeliverableComment struct {
	ID            string
	DeliverableID string
	UserID        string
	Text          string
	AttachmentRef *string
	Type          string
	CreatedAt     time.Time
}
