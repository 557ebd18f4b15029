package project

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// MemberForReport miembro activo con su nombre para el informe.
type MemberForReport struct {
	Name       string
	Email      string
	Role       entity.ProjectRole
	AssignedAt time.Time
}

// DeliverableForReport entregable con fase y marca de vencimiento ya resueltas.
type DeliverableForReport struct {
	Title     string
	PhaseName string
	State     entity.WorkflowState
	DueDate   *time.Time
	Overdue   bool
}

// Report datos del informe de estado de un proyecto.
type Report struct {
	Project      *entity.Project
	Members      []MemberForReport
	LegacyOwners map[entity.ProjectRole]string // rol → nombre del titular legacy
	Deliverables []DeliverableForReport
	Progress     decimal.Decimal
	GeneratedAt  time.Time
}

// ReportGenerator puerto de salida que renderiza el informe (PDF).
type ReportGenerator interface {
	GenerateProjectReport(ctx context.Context, report *Report) ([]byte, error)
}
