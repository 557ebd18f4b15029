package membership

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// MultipleHoldersWarning aviso no fatal: más de un titular activo para un rol con columna legacy.
// La columna queda con el titular más antiguo.
type MultipleHoldersWarning struct {
	ProjectID string
	Role      entity.ProjectRole
	HolderIDs []string // orden por fecha_asignacion ascendente
	Chosen    string
}

func (w MultipleHoldersWarning) String() string {
	return fmt.Sprintf("proyecto %s: %d titulares activos de %s (%s), se usa %s",
		w.ProjectID, len(w.HolderIDs), w.Role, strings.Join(w.HolderIDs, ", "), w.Chosen)
}

// SyncResult resultado de una sincronización legacy.
type SyncResult struct {
	ProjectID string
	Changed   bool
	Warnings  []MultipleHoldersWarning
	Created   []*entity.Membership // solo SyncMembershipFromLegacy
}

// LegacyAdapter concilia estudiante_id / director_id / evaluador_id con proyecto_usuarios.
// Es el único componente que escribe las columnas legacy.
type LegacyAdapter struct {
	store ports.Store
	log   zerolog.Logger
}

// NewLegacyAdapter construye el adaptador.
func NewLegacyAdapter(store ports.Store, log zerolog.Logger) *LegacyAdapter {
	return &LegacyAdapter{store: store, log: log}
}

// SyncLegacyFromMembership recalcula las tres columnas legacy desde las membresías activas.
// Idempotente: si nada cambia no se escribe el proyecto.
func (a *LegacyAdapter) SyncLegacyFromMembership(ctx context.Context, projectID string) (*SyncResult, error) {
	var res *SyncResult
	err := a.store.Run(ctx, func(repos ports.Repositories) error {
		project, err := repos.Projects.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
		}
		res, err = a.SyncLegacyInTx(ctx, repos, project)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SyncLegacyInTx aplica la sincronización con los repositorios del caller. project debe estar
// bloqueado (GetForUpdate) por la misma transacción; se actualiza en memoria.
func (a *LegacyAdapter) SyncLegacyInTx(ctx context.Context, repos ports.Repositories, project *entity.Project) (*SyncResult, error) {
	res := &SyncResult{ProjectID: project.ID}
	next := *project
	for _, role := range entity.LegacyRoles {
		holders, err := repos.Memberships.ListActiveByProjectAndRole(ctx, project.ID, role)
		if err != nil {
			return nil, fmt.Errorf("listar titulares %s: %w", role, err)
		}
		var want *string
		if len(holders) > 0 {
			id := holders[0].UserID
			want = &id
		}
		if len(holders) > 1 {
			w := MultipleHoldersWarning{ProjectID: project.ID, Role: role, Chosen: *want}
			for _, h := range holders {
				w.HolderIDs = append(w.HolderIDs, h.UserID)
			}
			res.Warnings = append(res.Warnings, w)
			a.log.Warn().
				Str("project_id", project.ID).
				Str("role", string(role)).
				Strs("holders", w.HolderIDs).
				Str("chosen", w.Chosen).
				Msg("múltiples titulares activos para rol legacy")
		}
		if !sameOwner(next.LegacyOwner(role), want) {
			next.SetLegacyOwner(role, want)
			res.Changed = true
		}
	}
	if !res.Changed {
		return res, nil
	}
	next.UpdatedAt = time.Now()
	if err := repos.Projects.UpdateLegacyOwners(ctx, &next); err != nil {
		return nil, err
	}
	*project = next
	a.log.Info().
		Str("project_id", project.ID).
		Interface("director_id", project.DirectorID).
		Interface("estudiante_id", project.StudentID).
		Interface("evaluador_id", project.EvaluatorID).
		Msg("columnas legacy recalculadas")
	return res, nil
}

// SyncMembershipFromLegacy garantiza una membresía activa por cada columna legacy no nula.
// Solo para proyectos creados antes de proyecto_usuarios. Todo o nada.
func (a *LegacyAdapter) SyncMembershipFromLegacy(ctx context.Context, projectID string) (*SyncResult, error) {
	res := &SyncResult{ProjectID: projectID}
	err := a.store.Run(ctx, func(repos ports.Repositories) error {
		project, err := repos.Projects.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
		}
		now := time.Now()
		for _, role := range entity.LegacyRoles {
			owner := project.LegacyOwner(role)
			if owner == nil || *owner == "" {
				continue
			}
			active, err := repos.Memberships.GetActive(ctx, projectID, *owner, role)
			if err != nil {
				return err
			}
			if active != nil {
				continue
			}
			user, err := repos.Users.GetByID(ctx, *owner)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("%s_id=%s sin usuario: %w", role, *owner, domain.ErrNotFound)
			}
			m, err := AddInTx(ctx, repos.Memberships, projectID, *owner, role, now)
			if err != nil {
				return err
			}
			res.Created = append(res.Created, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Changed = len(res.Created) > 0
	if res.Changed {
		a.log.Info().Str("project_id", projectID).Int("creadas", len(res.Created)).Msg("membresías completadas desde columnas legacy")
	}
	return res, nil
}

func sameOwner(a, b *string) bool {
	if a == nil || *a == "" {
		return b == nil
	}
	return b != nil && *a == *b
}
