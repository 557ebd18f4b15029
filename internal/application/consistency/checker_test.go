package consistency_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Proyectos-api/internal/application/consistency"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

type seed struct {
	store *memory.Store
	n     int
}

func (s *seed) project(t *testing.T, p entity.Project) {
	t.Helper()
	p.Title, p.Status, p.CreatedAt, p.UpdatedAt = "P "+p.ID, entity.ProjectStatusInProgress, t0, t0
	require.NoError(t, s.store.Repos().Projects.Create(context.Background(), &p))
}

func (s *seed) member(t *testing.T, projectID, userID string, role entity.ProjectRole, at time.Time) {
	t.Helper()
	s.n++
	require.NoError(t, s.store.Repos().Memberships.Create(context.Background(), &entity.Membership{
		ID: "m-" + string(rune('a'+s.n)), ProjectID: projectID, UserID: userID, Role: role,
		Status: entity.MembershipActive, AssignedAt: at,
	}))
}

func kinds(fs []consistency.Finding) map[string]int {
	out := map[string]int{}
	for _, f := range fs {
		out[f.Kind]++
	}
	return out
}

func TestCheck_SinHallazgos(t *testing.T) {
	s := &seed{store: memory.NewStore()}
	s.project(t, entity.Project{ID: "p-ok", StudentID: ptr("est"), DirectorID: ptr("dir")})
	s.member(t, "p-ok", "est", entity.RoleStudent, t0)
	s.member(t, "p-ok", "dir", entity.RoleDirector, t0)

	rep, err := consistency.NewChecker(s.store, zerolog.Nop()).Check(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Equal(t, 1, rep.ProjectsScanned)
}

func TestCheck_DetectaCadaTipo(t *testing.T) {
	ctx := context.Background()
	s := &seed{store: memory.NewStore()}

	// columna sin membresía
	s.project(t, entity.Project{ID: "p-legacy", StudentID: ptr("est")})
	// membresía sin columna
	s.project(t, entity.Project{ID: "p-sin-col"})
	s.member(t, "p-sin-col", "eva", entity.RoleEvaluator, t0)
	// codirección con la columna apuntando al más reciente
	s.project(t, entity.Project{ID: "p-codir", DirectorID: ptr("dir-2")})
	s.member(t, "p-codir", "dir-1", entity.RoleDirector, t0)
	s.member(t, "p-codir", "dir-2", entity.RoleDirector, t0.Add(time.Hour))

	require.NoError(t, s.store.Repos().Invitations.Create(ctx, &entity.Invitation{
		Code: "abc", ProjectID: "p-codir", Role: entity.RoleStudent, InvitedBy: "dir-1",
		Status: entity.InvitationPending, ExpiresAt: t0.Add(72 * time.Hour), Uses: 3, MaxUses: 2, CreatedAt: t0,
	}))

	rep, err := consistency.NewChecker(s.store, zerolog.Nop()).Check(ctx)
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.Equal(t, 3, rep.ProjectsScanned)
	assert.Equal(t, 1, rep.InvitationsScanned)
	assert.Equal(t, map[string]int{
		consistency.KindLegacyWithoutMembership: 1,
		consistency.KindMembershipWithoutLegacy: 1,
		consistency.KindLegacyMismatch:          1,
		consistency.KindMultipleHolders:         1,
		consistency.KindInvitationOverused:      1,
	}, kinds(rep.Findings))

	for _, f := range rep.Findings {
		switch f.Kind {
		case consistency.KindLegacyWithoutMembership:
			assert.Equal(t, "p-legacy", f.ProjectID)
			assert.Equal(t, entity.RoleStudent, f.Role)
		case consistency.KindMembershipWithoutLegacy:
			assert.Equal(t, []string{"eva"}, f.UserIDs)
		case consistency.KindLegacyMismatch:
			assert.Equal(t, []string{"dir-2", "dir-1"}, f.UserIDs)
		case consistency.KindMultipleHolders:
			assert.Equal(t, []string{"dir-1", "dir-2"}, f.UserIDs)
		}
	}
}

func TestCheckProject_Inexistente(t *testing.T) {
	fs, err := consistency.NewChecker(memory.NewStore(), zerolog.Nop()).CheckProject(context.Background(), "nada")
	require.NoError(t, err)
	assert.Empty(t, fs)
}
