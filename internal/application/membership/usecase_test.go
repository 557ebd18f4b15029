package membership_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/memory"
)

const (
	projectID = "p-1"
	ana       = "u-ana"
	beto      = "u-beto"
	carla     = "u-carla"
)

type fixture struct {
	store  *memory.Store
	legacy *membership.LegacyAdapter
	uc     *membership.MembershipUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	for _, id := range []string{ana, beto, carla} {
		require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: id, Name: id, Email: id + "@u.edu", Role: entity.RoleStudent, Active: true}))
	}
	require.NoError(t, repos.Projects.Create(ctx, &entity.Project{
		ID: projectID, Title: "Tesis", Status: entity.ProjectStatusInProgress,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	legacy := membership.NewLegacyAdapter(store, zerolog.Nop())
	return &fixture{store: store, legacy: legacy, uc: membership.NewMembershipUseCase(store, legacy, zerolog.Nop())}
}

func (f *fixture) project(t *testing.T) *entity.Project {
	t.Helper()
	p, err := f.store.Repos().Projects.GetByID(context.Background(), projectID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestAdd_DuplicadoActivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.uc.Add(ctx, projectID, ana, entity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipActive, m.Status)

	_, err = f.uc.Add(ctx, projectID, ana, entity.RoleStudent)
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveRole)

	// otro rol para el mismo usuario sí se permite
	_, err = f.uc.Add(ctx, projectID, ana, entity.RoleEvaluator)
	require.NoError(t, err)

	list, err := f.uc.ListActiveMembers(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAdd_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Add(ctx, projectID, ana, "bodeguero")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Add(ctx, "no-existe", ana, entity.RoleStudent)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Add(ctx, projectID, "u-fantasma", entity.RoleStudent)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdd_SincronizaColumnaLegacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Add(ctx, projectID, beto, entity.RoleDirector)
	require.NoError(t, err)
	p := f.project(t)
	require.NotNil(t, p.DirectorID)
	assert.Equal(t, beto, *p.DirectorID)

	_, err = f.uc.Add(ctx, projectID, carla, entity.RoleCoordinator)
	require.NoError(t, err)
	assert.Nil(t, f.project(t).StudentID, "coordinador no tiene columna legacy")
}

func TestDeactivate_ReactivarCreaFilaNueva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Add(ctx, projectID, ana, entity.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, f.uc.Deactivate(ctx, projectID, ana, entity.RoleStudent))
	assert.Nil(t, f.project(t).StudentID)

	role, err := f.uc.ResolveRole(ctx, projectID, ana)
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectRole(""), role)

	// la baja es idempotente sobre filas existentes
	require.NoError(t, f.uc.Deactivate(ctx, projectID, ana, entity.RoleStudent))

	_, err = f.uc.Add(ctx, projectID, ana, entity.RoleStudent)
	require.NoError(t, err)
	n, err := f.store.Repos().Memberships.CountByTriple(ctx, projectID, ana, entity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "el historial se conserva")

	err = f.uc.Deactivate(ctx, projectID, beto, entity.RoleDirector)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveRole_MayorPrivilegio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Add(ctx, projectID, ana, entity.RoleStudent)
	require.NoError(t, err)
	_, err = f.uc.Add(ctx, projectID, ana, entity.RoleDirector)
	require.NoError(t, err)

	role, err := f.uc.ResolveRole(ctx, projectID, ana)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleDirector, role)

	role, err = f.uc.ResolveRole(ctx, projectID, carla)
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectRole(""), role)
}

func TestAdd_IDsCrecenConElAlta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var prev string
	for _, u := range []string{ana, beto, carla} {
		m, err := f.uc.Add(ctx, projectID, u, entity.RoleDirector)
		require.NoError(t, err)
		assert.Greater(t, m.ID, prev, "a igual fecha_asignacion el id desempata por orden de alta")
		prev = m.ID
	}
}
