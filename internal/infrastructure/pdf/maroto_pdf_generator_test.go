package pdf_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appproject "github.com/jhoicas/Proyectos-api/internal/application/project"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/pdf"
)

func TestGenerateProjectReport(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rep := &appproject.Report{
		Project: &entity.Project{ID: "p-1", Title: "Sistema de riego", Status: entity.ProjectStatusInProgress},
		Members: []appproject.MemberForReport{
			{Name: "Ana", Role: entity.RoleStudent, AssignedAt: due},
			{Name: "Luis", Role: entity.RoleDirector, AssignedAt: due},
		},
		LegacyOwners: map[entity.ProjectRole]string{entity.RoleStudent: "Ana", entity.RoleDirector: "Luis"},
		Deliverables: []appproject.DeliverableForReport{
			{Title: "Anteproyecto", PhaseName: "Propuesta", State: entity.StateAccepted, DueDate: &due},
			{Title: "Marco teórico", PhaseName: "Desarrollo", State: entity.StateInProgress, DueDate: &due, Overdue: true},
		},
		Progress:    decimal.RequireFromString("50.00"),
		GeneratedAt: due,
	}

	out, err := pdf.NewMarotoPDFGenerator("proyectos-api").GenerateProjectReport(context.Background(), rep)
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateProjectReport_Empty(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator("x").GenerateProjectReport(context.Background(), &appproject.Report{})
	assert.Error(t, err)
}
