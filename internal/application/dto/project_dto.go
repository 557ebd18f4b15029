package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProjectRequest alta de proyecto con sus miembros iniciales.
type CreateProjectRequest struct {
	Title      string  `json:"title" validate:"required,min=3,max=300"`
	WorkAreaID *string `json:"work_area_id" validate:"omitempty,uuid"`
	StudentID  *string `json:"student_id" validate:"omitempty,uuid"`
	DirectorID *string `json:"director_id" validate:"omitempty,uuid"`
}

// ProjectResponse proyecto con sus columnas legacy.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	StudentID   *string   `json:"estudiante_id"`
	DirectorID  *string   `json:"director_id"`
	EvaluatorID *string   `json:"evaluador_id"`
	WorkAreaID  *string   `json:"work_area_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreatePhaseRequest alta de fase. Weight vacío o cero equivale a 1.
type CreatePhaseRequest struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Order  int             `json:"order" validate:"min=0"`
	Weight decimal.Decimal `json:"weight"`
}

// PhaseResponse fase de un proyecto.
type PhaseResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Order  int             `json:"order"`
	Weight decimal.Decimal `json:"weight"`
}

// ProgressResponse avance ponderado en porcentaje.
type ProgressResponse struct {
	ProjectID string          `json:"project_id"`
	Progress  decimal.Decimal `json:"progress"`
}

// FinalizeResponse entregables completados por el sistema al cerrar el proyecto.
type FinalizeResponse struct {
	ProjectID string                `json:"project_id"`
	Completed []DeliverableResponse `json:"completed"`
}
