package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/memory"
)

func runAudit(t *testing.T, store *memory.Store, args ...string) (string, error) {
	t.Helper()
	open := func(context.Context) (ports.Store, func(), error) { return store, func() {}, nil }
	migrate := func(context.Context) error { return nil }
	var out bytes.Buffer
	root := newRootCmd(open, migrate, zerolog.Nop(), &out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// proyecto anterior a proyecto_usuarios: solo columnas legacy.
func seedLegacyProject(t *testing.T) (*memory.Store, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	studentID := "33333333-3333-3333-3333-333333333333"
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: studentID, Name: "Ana", Email: "ana@u.edu", Role: entity.RoleStudent, Active: true}))
	p := &entity.Project{
		ID: "aaaaaaaa-0000-0000-0000-000000000001", Title: "Legado", Status: entity.ProjectStatusInProgress,
		StudentID: &studentID, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, repos.Projects.Create(ctx, p))
	return store, p.ID
}

func TestCheck_ReportaYBackfillCorrige(t *testing.T) {
	store, projectID := seedLegacyProject(t)

	out, err := runAudit(t, store, "check")
	assert.ErrorIs(t, err, errFindings)
	assert.Contains(t, out, "legacy_without_membership")
	assert.Contains(t, out, projectID)

	out, err = runAudit(t, store, "backfill", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "1 proyectos revisados, 1 modificados")

	out, err = runAudit(t, store, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "hallazgos: 0")

	// segunda pasada: nada que hacer
	out, err = runAudit(t, store, "backfill", "--project", projectID)
	require.NoError(t, err)
	assert.Contains(t, out, "0 modificados")
}

func TestSyncLegacy_RequiereProjectOAll(t *testing.T) {
	store, projectID := seedLegacyProject(t)

	_, err := runAudit(t, store, "sync-legacy")
	assert.Error(t, err)

	_, err = runAudit(t, store, "sync-legacy", "--all", "--project", projectID)
	assert.Error(t, err)
}

func TestSyncLegacy_LimpiaColumnaSinMembresia(t *testing.T) {
	store, projectID := seedLegacyProject(t)

	out, err := runAudit(t, store, "sync-legacy", "--project", projectID)
	require.NoError(t, err)
	assert.Contains(t, out, "1 modificados")

	p, err := store.Repos().Projects.GetByID(context.Background(), projectID)
	require.NoError(t, err)
	assert.Nil(t, p.StudentID)
}

func TestMigrate(t *testing.T) {
	out, err := runAudit(t, memory.NewStore(), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migraciones aplicadas")
}
