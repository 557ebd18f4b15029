// Package pdf genera el informe de estado de un proyecto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del proyecto │  Estado + Fecha              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TITULARES: estudiante / director / evaluador               │
//	│  MIEMBROS: Nombre | Rol | Desde                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ENTREGABLES: Fase | Título | Estado | Fecha límite         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  AVANCE PONDERADO                                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appproject "github.com/jhoicas/Proyectos-api/internal/application/project"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 176, Green: 32, Blue: 32}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appproject.ReportGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa project.ReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador. author aparece en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

// GenerateProjectReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateProjectReport(_ context.Context, rep *appproject.Report) ([]byte, error) {
	if rep == nil || rep.Project == nil {
		return nil, fmt.Errorf("pdf: informe vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Informe de proyecto", true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(ownersRow(rep))
	m.AddRows(sectionTitle("MIEMBROS ACTIVOS"))
	m.AddRows(memberRows(rep.Members)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("ENTREGABLES"))
	m.AddRows(deliverableHeaderRow())
	m.AddRows(deliverableRows(rep.Deliverables)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(progressRow(rep))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep *appproject.Report) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(rep.Project.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID: "+rep.Project.ID, props.Text{Size: 7, Top: 10, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Estado: "+rep.Project.Status, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// ownersRow: titulares de las columnas legacy (caché derivada de las membresías).
func ownersRow(rep *appproject.Report) core.Row {
	cell := func(role entity.ProjectRole) core.Col {
		return col.New(4).Add(
			text.New(role.Name(), props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(rep.LegacyOwners[role], "—"), props.Text{Size: 9, Top: 6}),
		)
	}
	return row.New(14).Add(
		cell(entity.RoleStudent),
		cell(entity.RoleDirector),
		cell(entity.RoleEvaluator),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func memberRows(members []appproject.MemberForReport) []core.Row {
	if len(members) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin miembros activos", props.Text{Size: 8, Color: colorGray, Top: 1}),
		))}
	}
	out := make([]core.Row, 0, len(members))
	for _, m := range members {
		out = append(out, row.New(6).Add(
			col.New(6).Add(text.New(m.Name, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(m.Role.Name(), props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(m.AssignedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			})),
		))
	}
	return out
}

func deliverableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1,
		}))
	}
	return row.New(7).Add(
		h("Fase", 3, align.Left),
		h("Título", 4, align.Left),
		h("Estado", 3, align.Center),
		h("Fecha límite", 2, align.Right),
	)
}

func deliverableRows(list []appproject.DeliverableForReport) []core.Row {
	out := make([]core.Row, 0, len(list))
	for _, d := range list {
		due := "—"
		if d.DueDate != nil {
			due = d.DueDate.Format("02/01/2006")
		}
		dueProps := props.Text{Size: 8, Align: align.Right, Top: 1}
		if d.Overdue {
			due += " (vencido)"
			dueProps.Color = colorAlert
			dueProps.Style = fontstyle.Bold
		}
		out = append(out, row.New(6).Add(
			col.New(3).Add(text.New(nonEmpty(d.PhaseName, "—"), props.Text{Size: 8, Top: 1})),
			col.New(4).Add(text.New(d.Title, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(string(d.State), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(due, dueProps)),
		))
	}
	return out
}

func progressRow(rep *appproject.Report) core.Row {
	return row.New(12).Add(
		col.New(8),
		col.New(4).Add(text.New("AVANCE: "+rep.Progress.StringFixed(2)+"%", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 3,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
