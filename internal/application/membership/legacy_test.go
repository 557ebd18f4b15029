package membership_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

func TestSyncLegacy_CodireccionEligeAlMasAntiguo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Add(ctx, projectID, beto, entity.RoleDirector)
	require.NoError(t, err)
	_, err = f.uc.Add(ctx, projectID, carla, entity.RoleDirector)
	require.NoError(t, err)

	res, err := f.legacy.SyncLegacyFromMembership(ctx, projectID)
	require.NoError(t, err)
	assert.False(t, res.Changed, "la columna ya apuntaba al más antiguo")
	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, entity.RoleDirector, w.Role)
	assert.Equal(t, beto, w.Chosen)
	assert.ElementsMatch(t, []string{beto, carla}, w.HolderIDs)
	assert.Contains(t, w.String(), "director")

	// baja del más antiguo: la columna pasa al siguiente titular
	require.NoError(t, f.uc.Deactivate(ctx, projectID, beto, entity.RoleDirector))
	p := f.project(t)
	require.NotNil(t, p.DirectorID)
	assert.Equal(t, carla, *p.DirectorID)
}

func TestSyncLegacy_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Add(ctx, projectID, ana, entity.RoleStudent)
	require.NoError(t, err)
	before := f.project(t).UpdatedAt

	res, err := f.legacy.SyncLegacyFromMembership(ctx, projectID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, before, f.project(t).UpdatedAt, "sin cambios no se reescribe la fila")
}

func TestSyncLegacy_LimpiaColumnaHuerfana(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.project(t)
	stale := ana
	p.StudentID = &stale
	require.NoError(t, f.store.Repos().Projects.UpdateLegacyOwners(ctx, p))

	res, err := f.legacy.SyncLegacyFromMembership(ctx, projectID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Nil(t, f.project(t).StudentID)
}

func TestSyncMembershipFromLegacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.project(t)
	s, d := ana, beto
	p.StudentID, p.DirectorID = &s, &d
	require.NoError(t, f.store.Repos().Projects.UpdateLegacyOwners(ctx, p))

	res, err := f.legacy.SyncMembershipFromLegacy(ctx, projectID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Len(t, res.Created, 2)

	role, err := f.uc.ResolveRole(ctx, projectID, beto)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleDirector, role)

	res, err = f.legacy.SyncMembershipFromLegacy(ctx, projectID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestSyncMembershipFromLegacy_UsuarioInexistenteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.project(t)
	s, ghost := ana, "u-fantasma"
	p.StudentID, p.DirectorID = &s, &ghost
	require.NoError(t, f.store.Repos().Projects.UpdateLegacyOwners(ctx, p))

	_, err := f.legacy.SyncMembershipFromLegacy(ctx, projectID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.uc.ListActiveMembers(ctx, projectID)
	require.NoError(t, err)
	assert.Empty(t, list, "todo o nada")
}
