package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// ── Usuarios ──────────────────────────────────────────────────────────────────

type userRepo struct{ base }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	return r.with(func(d *state) error {
		for _, x := range d.users {
			if strings.EqualFold(x.Email, u.Email) {
				return fmt.Errorf("email %s: %w", u.Email, domain.ErrInvalidInput)
			}
		}
		d.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.with(func(d *state) error {
		if u, ok := d.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.with(func(d *state) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ── Proyectos ─────────────────────────────────────────────────────────────────

type projectRepo struct{ base }

func (r projectRepo) Create(_ context.Context, p *entity.Project) error {
	return r.with(func(d *state) error {
		if _, ok := d.projects[p.ID]; ok {
			return fmt.Errorf("proyecto %s ya existe: %w", p.ID, domain.ErrInvalidInput)
		}
		d.projects[p.ID] = *p
		return nil
	})
}

func (r projectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	var out *entity.Project
	err := r.with(func(d *state) error {
		if p, ok := d.projects[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de Run el mutex ya serializa; equivale a GetByID.
func (r projectRepo) GetForUpdate(ctx context.Context, id string) (*entity.Project, error) {
	return r.GetByID(ctx, id)
}

func (r projectRepo) UpdateLegacyOwners(_ context.Context, p *entity.Project) error {
	return r.with(func(d *state) error {
		cur, ok := d.projects[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.StudentID, cur.DirectorID, cur.EvaluatorID = p.StudentID, p.DirectorID, p.EvaluatorID
		cur.UpdatedAt = p.UpdatedAt
		d.projects[p.ID] = cur
		return nil
	})
}

func (r projectRepo) UpdateStatus(_ context.Context, id, status string, updatedAt time.Time) error {
	return r.with(func(d *state) error {
		cur, ok := d.projects[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = status
		cur.UpdatedAt = updatedAt
		d.projects[id] = cur
		return nil
	})
}

func (r projectRepo) ListIDs(_ context.Context) ([]string, error) {
	var out []string
	err := r.with(func(d *state) error {
		for id := range d.projects {
			out = append(out, id)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// ── Membresías ────────────────────────────────────────────────────────────────

type membershipRepo struct{ base }

func (r membershipRepo) Create(_ context.Context, m *entity.Membership) error {
	return r.with(func(d *state) error {
		if m.Status == entity.MembershipActive {
			for _, x := range d.memberships {
				if x.ProjectID == m.ProjectID && x.UserID == m.UserID && x.Role == m.Role && x.IsActive() {
					return domain.ErrDuplicateActiveRole
				}
			}
		}
		d.memberships = append(d.memberships, *m)
		return nil
	})
}

func (r membershipRepo) GetActive(_ context.Context, projectID, userID string, role entity.ProjectRole) (*entity.Membership, error) {
	list, err := r.filter(func(m entity.Membership) bool {
		return m.ProjectID == projectID && m.UserID == userID && m.Role == role && m.IsActive()
	})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r membershipRepo) CountByTriple(_ context.Context, projectID, userID string, role entity.ProjectRole) (int, error) {
	list, err := r.filter(func(m entity.Membership) bool {
		return m.ProjectID == projectID && m.UserID == userID && m.Role == role
	})
	return len(list), err
}

func (r membershipRepo) DeactivateTriple(_ context.Context, projectID, userID string, role entity.ProjectRole) error {
	return r.with(func(d *state) error {
		for i, x := range d.memberships {
			if x.ProjectID == projectID && x.UserID == userID && x.Role == role {
				d.memberships[i].Status = entity.MembershipInactive
			}
		}
		return nil
	})
}

func (r membershipRepo) ListActiveByProject(_ context.Context, projectID string) ([]*entity.Membership, error) {
	return r.filter(func(m entity.Membership) bool {
		return m.ProjectID == projectID && m.IsActive()
	})
}

func (r membershipRepo) ListActiveByProjectAndUser(_ context.Context, projectID, userID string) ([]*entity.Membership, error) {
	return r.filter(func(m entity.Membership) bool {
		return m.ProjectID == projectID && m.UserID == userID && m.IsActive()
	})
}

func (r membershipRepo) ListActiveByProjectAndRole(_ context.Context, projectID string, role entity.ProjectRole) ([]*entity.Membership, error) {
	return r.filter(func(m entity.Membership) bool {
		return m.ProjectID == projectID && m.Role == role && m.IsActive()
	})
}

// filter devuelve copias ordenadas por fecha_asignacion; empates por id, como en postgres.
func (r membershipRepo) filter(keep func(entity.Membership) bool) ([]*entity.Membership, error) {
	var out []*entity.Membership
	err := r.with(func(d *state) error {
		for _, m := range d.memberships {
			if keep(m) {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].AssignedAt.Before(out[j].AssignedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// ── Áreas de trabajo ──────────────────────────────────────────────────────────

type workAreaRepo struct{ base }

func (r workAreaRepo) Get(_ context.Context, userID, workAreaID string) (*entity.WorkAreaAssignment, error) {
	var out *entity.WorkAreaAssignment
	err := r.with(func(d *state) error {
		if a, ok := d.workAreas[workAreaKey{userID, workAreaID}]; ok {
			out = &a
		}
		return nil
	})
	return out, err
}

func (r workAreaRepo) Create(_ context.Context, a *entity.WorkAreaAssignment) error {
	return r.with(func(d *state) error {
		d.workAreas[workAreaKey{a.UserID, a.WorkAreaID}] = *a
		return nil
	})
}

func (r workAreaRepo) Activate(_ context.Context, userID, workAreaID string) error {
	return r.with(func(d *state) error {
		k := workAreaKey{userID, workAreaID}
		a, ok := d.workAreas[k]
		if !ok {
			return domain.ErrNotFound
		}
		a.Active = true
		d.workAreas[k] = a
		return nil
	})
}

// ── Invitaciones ──────────────────────────────────────────────────────────────

type invitationRepo struct{ base }

func (r invitationRepo) Create(_ context.Context, inv *entity.Invitation) error {
	return r.with(func(d *state) error {
		if _, ok := d.invitations[inv.Code]; ok {
			return fmt.Errorf("código duplicado: %w", domain.ErrInvalidInput)
		}
		d.invitations[inv.Code] = *inv
		return nil
	})
}

func (r invitationRepo) GetByCode(_ context.Context, code string) (*entity.Invitation, error) {
	var out *entity.Invitation
	err := r.with(func(d *state) error {
		if inv, ok := d.invitations[code]; ok {
			out = &inv
		}
		return nil
	})
	return out, err
}

func (r invitationRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Invitation, error) {
	return r.GetByCode(ctx, code)
}

func (r invitationRepo) Update(_ context.Context, inv *entity.Invitation) error {
	return r.with(func(d *state) error {
		cur, ok := d.invitations[inv.Code]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = inv.Status
		cur.Uses = inv.Uses
		d.invitations[inv.Code] = cur
		return nil
	})
}

func (r invitationRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.Invitation, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Invitation, 0, len(all))
	for _, inv := range all {
		if inv.ProjectID == projectID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r invitationRepo) ListAll(_ context.Context) ([]*entity.Invitation, error) {
	var out []*entity.Invitation
	err := r.with(func(d *state) error {
		for _, inv := range d.invitations {
			inv := inv
			out = append(out, &inv)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, err
}

// ── Entregables ───────────────────────────────────────────────────────────────

type deliverableRepo struct{ base }

func (r deliverableRepo) Create(_ context.Context, dl *entity.Deliverable) error {
	return r.with(func(d *state) error {
		d.deliverables[dl.ID] = *dl
		return nil
	})
}

func (r deliverableRepo) GetByID(_ context.Context, id string) (*entity.Deliverable, error) {
	var out *entity.Deliverable
	err := r.with(func(d *state) error {
		if dl, ok := d.deliverables[id]; ok {
			out = &dl
		}
		return nil
	})
	return out, err
}

func (r deliverableRepo) GetForUpdate(ctx context.Context, id string) (*entity.Deliverable, error) {
	return r.GetByID(ctx, id)
}

func (r deliverableRepo) UpdateState(_ context.Context, id string, expected, next entity.WorkflowState, updatedAt time.Time) (bool, error) {
	updated := false
	err := r.with(func(d *state) error {
		cur, ok := d.deliverables[id]
		if !ok || cur.State != expected {
			return nil
		}
		cur.State = next
		cur.UpdatedAt = updatedAt
		d.deliverables[id] = cur
		updated = true
		return nil
	})
	return updated, err
}

func (r deliverableRepo) ListByProject(_ context.Context, projectID string) ([]*entity.Deliverable, error) {
	var out []*entity.Deliverable
	err := r.with(func(d *state) error {
		for _, dl := range d.deliverables {
			if dl.ProjectID == projectID {
				dl := dl
				out = append(out, &dl)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// ── Transiciones y comentarios ────────────────────────────────────────────────

type transitionRepo struct{ base }

func (r transitionRepo) Create(_ context.Context, t *entity.DeliverableTransition) error {
	return r.with(func(d *state) error {
		d.transitions = append(d.transitions, *t)
		return nil
	})
}

func (r transitionRepo) ListByDeliverable(_ context.Context, deliverableID string) ([]*entity.DeliverableTransition, error) {
	var out []*entity.DeliverableTransition
	err := r.with(func(d *state) error {
		for _, t := range d.transitions {
			if t.DeliverableID == deliverableID {
				t := t
				out = append(out, &t)
			}
		}
		return nil
	})
	return out, err
}

type commentRepo struct{ base }

func (r commentRepo) Create(_ context.Context, c *entity.DeliverableComment) error {
	return r.with(func(d *state) error {
		d.comments = append(d.comments, *c)
		return nil
	})
}

func (r commentRepo) ListByDeliverable(_ context.Context, deliverableID string) ([]*entity.DeliverableComment, error) {
	var out []*entity.DeliverableComment
	err := r.with(func(d *state) error {
		for _, c := range d.comments {
			if c.DeliverableID == deliverableID {
				c := c
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

// ── Fases ─────────────────────────────────────────────────────────────────────

type phaseRepo struct{ base }

func (r phaseRepo) Create(_ context.Context, p *entity.Phase) error {
	return r.with(func(d *state) error {
		d.phases[p.ID] = *p
		return nil
	})
}

func (r phaseRepo) GetByID(_ context.Context, id string) (*entity.Phase, error) {
	var out *entity.Phase
	err := r.with(func(d *state) error {
		if p, ok := d.phases[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r phaseRepo) ListByProject(_ context.Context, projectID string) ([]*entity.Phase, error) {
	var out []*entity.Phase
	err := r.with(func(d *state) error {
		for _, p := range d.phases {
			if p.ProjectID == projectID {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}
