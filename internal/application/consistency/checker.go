package consistency

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// Tipos de hallazgo.
const (
	KindLegacyWithoutMembership = "legacy_without_membership"
	KindMembershipWithoutLegacy = "membership_without_legacy"
	KindLegacyMismatch          = "legacy_mismatch"
	KindMultipleHolders         = "multiple_holders"
	KindInvitationOverused      = "invitation_overused"
)

// Finding inconsistencia detectada. Nunca se corrige aquí.
type Finding struct {
	Kind      string
	ProjectID string
	Role      entity.ProjectRole
	UserIDs   []string
	Detail    string
}

// Report resultado de un chequeo completo.
type Report struct {
	ProjectsScanned    int
	InvitationsScanned int
	Findings           []Finding
}

// OK informa si no hubo hallazgos.
func (r *Report) OK() bool { return len(r.Findings) == 0 }

// Checker recorre proyectos e invitaciones buscando violaciones de las reglas de membresía.
type Checker struct {
	store ports.Store
	log   zerolog.Logger
}

// NewChecker construye el chequeador.
func NewChecker(store ports.Store, log zerolog.Logger) *Checker {
	return &Checker{store: store, log: log}
}

// Check escanea todo el almacenamiento. Solo reporta.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	repos := c.store.Repos()
	ids, err := repos.Projects.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar proyectos: %w", err)
	}
	rep := &Report{}
	for _, id := range ids {
		fs, err := c.CheckProject(ctx, id)
		if err != nil {
			return nil, err
		}
		rep.ProjectsScanned++
		rep.Findings = append(rep.Findings, fs...)
	}
	invs, err := repos.Invitations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar invitaciones: %w", err)
	}
	for _, inv := range invs {
		rep.InvitationsScanned++
		if inv.Uses > inv.MaxUses {
			rep.Findings = append(rep.Findings, Finding{
				Kind:      KindInvitationOverused,
				ProjectID: inv.ProjectID,
				Role:      inv.Role,
				Detail:    fmt.Sprintf("código %s: usos %d > max_usos %d", inv.Code, inv.Uses, inv.MaxUses),
			})
		}
	}
	c.log.Info().
		Int("proyectos", rep.ProjectsScanned).
		Int("invitaciones", rep.InvitationsScanned).
		Int("hallazgos", len(rep.Findings)).
		Msg("chequeo de consistencia")
	return rep, nil
}

// CheckProject revisa columnas legacy contra membresías activas de un proyecto.
func (c *Checker) CheckProject(ctx context.Context, projectID string) ([]Finding, error) {
	repos := c.store.Repos()
	p, err := repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("proyecto %s: %w", projectID, err)
	}
	if p == nil {
		return nil, nil
	}
	var out []Finding
	for _, role := range entity.LegacyRoles {
		holders, err := repos.Memberships.ListActiveByProjectAndRole(ctx, projectID, role)
		if err != nil {
			return nil, fmt.Errorf("titulares %s: %w", role, err)
		}
		owner := p.LegacyOwner(role)
		hasOwner := owner != nil && *owner != ""
		ids := make([]string, 0, len(holders))
		for _, h := range holders {
			ids = append(ids, h.UserID)
		}
		if len(holders) > 1 {
			out = append(out, Finding{Kind: KindMultipleHolders, ProjectID: projectID, Role: role, UserIDs: ids,
				Detail: fmt.Sprintf("%d titulares activos", len(holders))})
		}
		switch {
		case hasOwner && !contains(ids, *owner):
			out = append(out, Finding{Kind: KindLegacyWithoutMembership, ProjectID: projectID, Role: role,
				UserIDs: []string{*owner}, Detail: fmt.Sprintf("%s_id sin membresía activa", role)})
		case hasOwner && ids[0] != *owner:
			out = append(out, Finding{Kind: KindLegacyMismatch, ProjectID: projectID, Role: role,
				UserIDs: []string{*owner, ids[0]}, Detail: "la columna no apunta al titular más antiguo"})
		case !hasOwner && len(ids) > 0:
			out = append(out, Finding{Kind: KindMembershipWithoutLegacy, ProjectID: projectID, Role: role,
				UserIDs: ids, Detail: fmt.Sprintf("%s_id nulo con membresías activas", role)})
		}
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
