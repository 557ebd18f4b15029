package project

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Proyectos-api/internal/application/access"
	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/workflow"
)

// CreateInput datos de un proyecto nuevo.
type CreateInput struct {
	Title      string
	WorkAreaID *string
	StudentID  *string
	DirectorID *string
}

// ProjectUseCase alta de proyectos, fases, avance e informe.
type ProjectUseCase struct {
	store     ports.Store
	legacy    *membership.LegacyAdapter
	generator ReportGenerator
	log       zerolog.Logger
	now       func() time.Time
}

// NewProjectUseCase construye el caso de uso. generator puede ser nil si no se exponen informes.
func NewProjectUseCase(store ports.Store, legacy *membership.LegacyAdapter, generator ReportGenerator, log zerolog.Logger) *ProjectUseCase {
	return &ProjectUseCase{store: store, legacy: legacy, generator: generator, log: log, now: time.Now}
}

// Create registra el proyecto y sus membresías iniciales en una sola tx. El creador debe tener
// rol de sistema coordinador o admin y queda como miembro con ese rol. Las columnas legacy se
// derivan de las membresías, nunca de la entrada.
func (uc *ProjectUseCase) Create(ctx context.Context, creatorID string, in CreateInput) (*entity.Project, error) {
	title := strings.TrimSpace(in.Title)
	if creatorID == "" || title == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	p := &entity.Project{
		ID:         uuid.New().String(),
		Title:      title,
		Status:     entity.ProjectStatusDraft,
		WorkAreaID: in.WorkAreaID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		creator, err := repos.Users.GetByID(ctx, creatorID)
		if err != nil {
			return err
		}
		if creator == nil {
			return fmt.Errorf("usuario %s: %w", creatorID, domain.ErrNotFound)
		}
		if creator.Role != entity.RoleCoordinator && creator.Role != entity.RoleAdmin {
			return domain.ErrForbidden
		}
		if err := repos.Projects.Create(ctx, p); err != nil {
			return err
		}
		if _, err := membership.AddInTx(ctx, repos.Memberships, p.ID, creatorID, creator.Role, now); err != nil {
			return err
		}
		initial := []struct {
			id   *string
			role entity.ProjectRole
		}{
			{in.StudentID, entity.RoleStudent},
			{in.DirectorID, entity.RoleDirector},
		}
		for _, m := range initial {
			if m.id == nil || *m.id == "" {
				continue
			}
			u, err := repos.Users.GetByID(ctx, *m.id)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("%s %s: %w", m.role, *m.id, domain.ErrNotFound)
			}
			if _, err := membership.AddInTx(ctx, repos.Memberships, p.ID, *m.id, m.role, now); err != nil {
				return err
			}
		}
		_, err = uc.legacy.SyncLegacyInTx(ctx, repos, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("project_id", p.ID).Str("creator_id", creatorID).Msg("proyecto creado")
	return p, nil
}

// Get devuelve el proyecto si el usuario puede ver sus entregables.
func (uc *ProjectUseCase) Get(ctx context.Context, projectID, userID string) (*entity.Project, error) {
	repos := uc.store.Repos()
	if err := uc.requireView(ctx, repos, projectID, userID); err != nil {
		return nil, err
	}
	return repos.Projects.GetByID(ctx, projectID)
}

// AddPhase agrega una fase. Peso cero toma 1.
func (uc *ProjectUseCase) AddPhase(ctx context.Context, projectID, userID, name string, order int, weight decimal.Decimal) (*entity.Phase, error) {
	name = strings.TrimSpace(name)
	if projectID == "" || name == "" || weight.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if weight.IsZero() {
		weight = decimal.NewFromInt(1)
	}
	ph := &entity.Phase{ID: uuid.New().String(), ProjectID: projectID, Name: name, Order: order, Weight: weight}
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		p, err := repos.Projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
		}
		gate := access.NewGate(repos, uc.log, nil)
		if _, err := gate.RequireCapability(ctx, userID, projectID, entity.CapCreateDeliverables); err != nil {
			return err
		}
		return repos.Phases.Create(ctx, ph)
	})
	if err != nil {
		return nil, err
	}
	return ph, nil
}

// Progress avance ponderado del proyecto (porcentaje con 2 decimales).
func (uc *ProjectUseCase) Progress(ctx context.Context, projectID, userID string) (decimal.Decimal, error) {
	repos := uc.store.Repos()
	if err := uc.requireView(ctx, repos, projectID, userID); err != nil {
		return decimal.Zero, err
	}
	phases, err := repos.Phases.ListByProject(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	list, err := repos.Deliverables.ListByProject(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	return workflow.Progress(phases, list), nil
}

// Report genera el informe PDF del proyecto.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si el proyecto no existe.
//   - domain.ErrForbidden       si el usuario no ve los entregables del proyecto.
func (uc *ProjectUseCase) Report(ctx context.Context, projectID, userID string) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("informe: generador no configurado")
	}
	repos := uc.store.Repos()
	// ── 1. Acceso ─────────────────────────────────────────────────────────────
	if err := uc.requireView(ctx, repos, projectID, userID); err != nil {
		return nil, "", err
	}
	p, err := repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("informe: obtener proyecto: %w", err)
	}
	now := uc.now()
	rep := &Report{Project: p, LegacyOwners: map[entity.ProjectRole]string{}, GeneratedAt: now}

	// ── 2. Miembros y titulares legacy ────────────────────────────────────────
	members, err := repos.Memberships.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("informe: listar miembros: %w", err)
	}
	names := map[string]*entity.User{}
	lookup := func(id string) (*entity.User, error) {
		if u, ok := names[id]; ok {
			return u, nil
		}
		u, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		names[id] = u
		return u, nil
	}
	for _, m := range members {
		u, err := lookup(m.UserID)
		if err != nil {
			return nil, "", fmt.Errorf("informe: obtener usuario: %w", err)
		}
		row := MemberForReport{Name: m.UserID, Role: m.Role, AssignedAt: m.AssignedAt}
		if u != nil {
			row.Name, row.Email = u.Name, u.Email
		}
		rep.Members = append(rep.Members, row)
	}
	for _, role := range entity.LegacyRoles {
		owner := p.LegacyOwner(role)
		if owner == nil {
			continue
		}
		u, err := lookup(*owner)
		if err != nil {
			return nil, "", fmt.Errorf("informe: obtener titular: %w", err)
		}
		if u != nil {
			rep.LegacyOwners[role] = u.Name
		} else {
			rep.LegacyOwners[role] = *owner
		}
	}

	// ── 3. Entregables y avance ───────────────────────────────────────────────
	phases, err := repos.Phases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("informe: listar fases: %w", err)
	}
	phaseNames := make(map[string]string, len(phases))
	for _, ph := range phases {
		phaseNames[ph.ID] = ph.Name
	}
	list, err := repos.Deliverables.ListByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("informe: listar entregables: %w", err)
	}
	for _, d := range list {
		rep.Deliverables = append(rep.Deliverables, DeliverableForReport{
			Title:     d.Title,
			PhaseName: phaseNames[d.PhaseID],
			State:     d.State,
			DueDate:   d.DueDate,
			Overdue:   d.IsOverdue(now),
		})
	}
	sort.SliceStable(rep.Deliverables, func(i, j int) bool {
		return rep.Deliverables[i].PhaseName < rep.Deliverables[j].PhaseName
	})
	rep.Progress = workflow.Progress(phases, list)

	// ── 4. Render ─────────────────────────────────────────────────────────────
	pdf, err := uc.generator.GenerateProjectReport(ctx, rep)
	if err != nil {
		return nil, "", fmt.Errorf("informe: generar pdf: %w", err)
	}
	return pdf, fmt.Sprintf("proyecto-%s.pdf", p.ID), nil
}

func (uc *ProjectUseCase) requireView(ctx context.Context, repos ports.Repositories, projectID, userID string) error {
	dec, err := access.NewGate(repos, uc.log, nil).CanViewProjectDeliverables(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if !dec.Allowed {
		return domain.ErrForbidden
	}
	return nil
}
