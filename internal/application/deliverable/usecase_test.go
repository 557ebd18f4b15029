package deliverable_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Proyectos-api/internal/application/deliverable"
	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/workflow"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/memory"
)

const (
	projectID   = "p-1"
	phaseID     = "f-1"
	areaID      = "area-1"
	coordinator = "u-coordinador"
	director    = "u-director"
	codirector  = "u-codirector"
	student     = "u-estudiante"
	student2    = "u-estudiante-2"
	evaluator   = "u-evaluador"
	areaUser    = "u-area"
)

type fixture struct {
	store *memory.Store
	uc    *deliverable.DeliverableUseCase
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	area := areaID
	require.NoError(t, repos.Projects.Create(ctx, &entity.Project{
		ID: projectID, Title: "Tesis", Status: entity.ProjectStatusInProgress, WorkAreaID: &area,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	require.NoError(t, repos.Phases.Create(ctx, &entity.Phase{ID: phaseID, ProjectID: projectID, Name: "Anteproyecto", Order: 1, Weight: decimal.NewFromInt(1)}))
	members := []struct {
		id   string
		role entity.ProjectRole
	}{
		{coordinator, entity.RoleCoordinator},
		{director, entity.RoleDirector},
		{codirector, entity.RoleDirector},
		{student, entity.RoleStudent},
		{student2, entity.RoleStudent},
		{evaluator, entity.RoleEvaluator},
	}
	for _, m := range members {
		require.NoError(t, repos.Memberships.Create(ctx, &entity.Membership{
			ID: "m-" + m.id, ProjectID: projectID, UserID: m.id, Role: m.role,
			Status: entity.MembershipActive, AssignedAt: time.Now(),
		}))
	}
	require.NoError(t, repos.WorkAreas.Create(ctx, &entity.WorkAreaAssignment{UserID: areaUser, WorkAreaID: areaID, Active: true}))

	uc := deliverable.NewDeliverableUseCase(store, zerolog.Nop(), nil)
	f := &fixture{store: store, uc: uc, now: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	uc.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) create(t *testing.T, assignee *string) *entity.Deliverable {
	t.Helper()
	d, err := f.uc.Create(context.Background(), projectID, director, deliverable.CreateInput{
		PhaseID: phaseID, Title: "Capítulo 1", AssigneeID: assignee,
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) state(t *testing.T, id string) entity.WorkflowState {
	t.Helper()
	d, err := f.store.Repos().Deliverables.GetByID(context.Background(), id)
	require.NoError(t, err)
	return d.State
}

type step struct {
	user string
	to   entity.WorkflowState
}

func (f *fixture) moveAll(t *testing.T, id string, steps ...step) {
	t.Helper()
	for _, s := range steps {
		_, err := f.uc.Transition(context.Background(), id, s.user, s.to)
		require.NoError(t, err, "%s → %s", s.user, s.to)
	}
}

func toUnderReview(assignee string) []step {
	return []step{
		{assignee, entity.StateInProgress},
		{assignee, entity.StateSubmitted},
		{director, entity.StateUnderReview},
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student

	d := f.create(t, &s)
	assert.Equal(t, entity.StatePending, d.State)

	_, err := f.uc.Create(ctx, projectID, student, deliverable.CreateInput{PhaseID: phaseID, Title: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Create(ctx, projectID, director, deliverable.CreateInput{PhaseID: "otra-fase", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ev := evaluator
	_, err = f.uc.Create(ctx, projectID, director, deliverable.CreateInput{PhaseID: phaseID, Title: "x", AssigneeID: &ev})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el asignado debe ser estudiante activo")
}

func TestTransition_RecorridoCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	d := f.create(t, &s)

	f.moveAll(t, d.ID, toUnderReview(student)...)
	f.moveAll(t, d.ID,
		step{director, entity.StateRequiresChanges},
		step{student, entity.StateInProgress},
		step{student, entity.StateSubmitted},
		step{coordinator, entity.StateUnderReview},
		step{coordinator, entity.StateAccepted},
		step{coordinator, entity.StateCompleted},
	)
	assert.Equal(t, entity.StateCompleted, f.state(t, d.ID))

	hist, err := f.uc.History(ctx, d.ID, student)
	require.NoError(t, err)
	require.Len(t, hist.Transitions, 9)
	first := hist.Transitions[0]
	assert.Equal(t, entity.StatePending, first.FromState)
	assert.Equal(t, entity.StateInProgress, first.ToState)
	require.NotNil(t, first.ActorID)
	assert.Equal(t, student, *first.ActorID)
}

func TestTransition_EstudianteNoPasaARevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	d := f.create(t, &s)
	f.moveAll(t, d.ID, step{student, entity.StateInProgress}, step{student, entity.StateSubmitted})

	_, err := f.uc.Transition(ctx, d.ID, student, entity.StateUnderReview)
	assert.ErrorIs(t, err, domain.ErrForbiddenTransition)
	assert.Equal(t, entity.StateSubmitted, f.state(t, d.ID))
}

func TestTransition_SoloElAsignado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	d := f.create(t, &s)

	_, err := f.uc.Transition(ctx, d.ID, student2, entity.StateInProgress)
	assert.ErrorIs(t, err, domain.ErrForbiddenTransition)

	// sin asignado, cualquier estudiante del proyecto
	open := f.create(t, nil)
	_, err = f.uc.Transition(ctx, open.ID, student2, entity.StateInProgress)
	require.NoError(t, err)
}

func TestTransition_AreaYEvaluadorNoTransicionan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	d := f.create(t, &s)
	f.moveAll(t, d.ID, toUnderReview(student)...)

	for _, u := range []string{areaUser, evaluator} {
		_, err := f.uc.Transition(ctx, d.ID, u, entity.StateAccepted)
		assert.ErrorIs(t, err, domain.ErrForbiddenTransition, u)
	}
	assert.Equal(t, entity.StateUnderReview, f.state(t, d.ID))
}

func TestTransition_AristasIlegalesNoCambianEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	d := f.create(t, &s)

	for _, target := range entity.AllStates {
		if workflow.CanMove(entity.StatePending, target) {
			continue
		}
		_, err := f.uc.Transition(ctx, d.ID, coordinator, target)
		assert.ErrorIs(t, err, domain.ErrIllegalTransition, "pendiente → %s", target)
	}
	assert.Equal(t, entity.StatePending, f.state(t, d.ID))

	hist, err := f.uc.History(ctx, d.ID, coordinator)
	require.NoError(t, err)
	assert.Empty(t, hist.Transitions)

	_, err = f.uc.Transition(ctx, d.ID, coordinator, "archivado")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Transition(ctx, "no-existe", coordinator, entity.StateInProgress)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition_RevisoresConcurrentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	d := f.create(t, &s)
	f.moveAll(t, d.ID, toUnderReview(student)...)

	targets := map[string]entity.WorkflowState{director: entity.StateAccepted, codirector: entity.StateRejected}
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error
	for user, target := range targets {
		wg.Add(1)
		go func(user string, target entity.WorkflowState) {
			defer wg.Done()
			_, err := f.uc.Transition(ctx, d.ID, user, target)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(user, target)
	}
	wg.Wait()

	ok, illegal := 0, 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if errors.Is(err, domain.ErrIllegalTransition) {
			illegal++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, illegal)

	final := f.state(t, d.ID)
	assert.Contains(t, []entity.WorkflowState{entity.StateAccepted, entity.StateRejected}, final)

	hist, err := f.uc.History(ctx, d.ID, director)
	require.NoError(t, err)
	assert.Len(t, hist.Transitions, 4, "una sola transición desde en_revision")
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	d := f.create(t, &s)

	c, err := f.uc.AddComment(ctx, d.ID, student, "Adjunto avance", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.CommentTypeComment, c.Type)

	c, err = f.uc.AddComment(ctx, d.ID, director, "Revisar bibliografía", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.CommentTypeReview, c.Type)

	c, err = f.uc.AddComment(ctx, d.ID, evaluator, "Observación", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.CommentTypeReview, c.Type)

	_, err = f.uc.AddComment(ctx, d.ID, areaUser, "Hola", nil)
	assert.ErrorIs(t, err, domain.ErrForbidden, "el área de trabajo solo da lectura")

	_, err = f.uc.AddComment(ctx, d.ID, student, "   ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLecturas_Visibilidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	d := f.create(t, &s)
	due := f.now.Add(-time.Hour)
	late, err := f.uc.Create(ctx, projectID, director, deliverable.CreateInput{PhaseID: phaseID, Title: "Vencido", DueDate: &due})
	require.NoError(t, err)

	list, err := f.uc.List(ctx, projectID, areaUser)
	require.NoError(t, err)
	require.Len(t, list, 2)
	overdue := map[string]bool{}
	for _, v := range list {
		overdue[v.ID] = v.Overdue
	}
	assert.False(t, overdue[d.ID])
	assert.True(t, overdue[late.ID])

	v, err := f.uc.Get(ctx, late.ID, student)
	require.NoError(t, err)
	assert.True(t, v.Overdue)

	_, err = f.uc.List(ctx, projectID, "u-extraño")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Get(ctx, d.ID, "u-extraño")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFinalizeProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := student
	accepted := f.create(t, &s)
	f.moveAll(t, accepted.ID, toUnderReview(student)...)
	f.moveAll(t, accepted.ID, step{director, entity.StateAccepted})
	pending := f.create(t, &s)

	_, err := f.uc.FinalizeProject(ctx, projectID, director)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	done, err := f.uc.FinalizeProject(ctx, projectID, coordinator)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, accepted.ID, done[0].ID)
	assert.Equal(t, entity.StateCompleted, f.state(t, accepted.ID))
	assert.Equal(t, entity.StatePending, f.state(t, pending.ID))

	hist, err := f.uc.History(ctx, accepted.ID, coordinator)
	require.NoError(t, err)
	last := hist.Transitions[len(hist.Transitions)-1]
	assert.Nil(t, last.ActorID, "transición del sistema")

	p, err := f.store.Repos().Projects.GetByID(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectStatusFinished, p.Status)

	done, err = f.uc.FinalizeProject(ctx, projectID, coordinator)
	require.NoError(t, err)
	assert.Empty(t, done, "finalizar dos veces no hace nada")
}

type recordingMetrics struct {
	ports.NoopMetrics
	transitions []string
}

func (m *recordingMetrics) TransitionObserved(from, to, outcome string) {
	m.transitions = append(m.transitions, from+"→"+to+":"+outcome)
}

func TestTransition_MetricasSoloConEstadoDeOrigen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := &recordingMetrics{}
	uc := deliverable.NewDeliverableUseCase(f.store, zerolog.Nop(), rec)
	s := student
	d := f.create(t, &s)

	_, err := uc.Transition(ctx, "no-existe", student, entity.StateInProgress)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, rec.transitions)

	_, err = uc.Transition(ctx, d.ID, student2, entity.StateInProgress)
	assert.ErrorIs(t, err, domain.ErrForbiddenTransition)
	_, err = uc.Transition(ctx, d.ID, student, entity.StateInProgress)
	require.NoError(t, err)
	assert.Equal(t, []string{"pendiente→en_progreso:forbidden", "pendiente→en_progreso:ok"}, rec.transitions)
}
