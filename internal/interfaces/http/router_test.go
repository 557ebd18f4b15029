package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Proyectos-api/internal/application/access"
	"github.com/jhoicas/Proyectos-api/internal/application/auth"
	"github.com/jhoicas/Proyectos-api/internal/application/deliverable"
	"github.com/jhoicas/Proyectos-api/internal/application/dto"
	"github.com/jhoicas/Proyectos-api/internal/application/invitation"
	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/application/project"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Proyectos-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Proyectos-api/internal/interfaces/http"
)

const (
	coordID    = "11111111-1111-1111-1111-111111111111"
	directorID = "22222222-2222-2222-2222-222222222222"
	studentID  = "33333333-3333-3333-3333-333333333333"
	outsiderID = "44444444-4444-4444-4444-444444444444"
	password   = "secreto-123"
)

type apiHarness struct {
	t   *testing.T
	app *fiber.App
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	store := memory.NewStore()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	seed := []entity.User{
		{ID: coordID, Name: "Coordinación", Email: "coord@u.edu", Role: entity.RoleCoordinator},
		{ID: directorID, Name: "Directora", Email: "director@u.edu", Role: entity.RoleDirector},
		{ID: studentID, Name: "Estudiante", Email: "est@u.edu", Role: entity.RoleStudent},
		{ID: outsiderID, Name: "Externo", Email: "ext@u.edu", Role: entity.RoleEvaluator},
	}
	for i := range seed {
		u := seed[i]
		u.PasswordHash = string(hash)
		u.Active = true
		require.NoError(t, store.Repos().Users.Create(context.Background(), &u))
	}

	log := zerolog.Nop()
	prom := metrics.New("proyectos_test")
	legacy := membership.NewLegacyAdapter(store, log)
	deliverables := deliverable.NewDeliverableUseCase(store, log, prom)

	app := fiber.New(apphttp.AppConfig("proyectos-test"))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:        auth.NewAuthUseCase(store.Repos().Users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		ProjectUC:     project.NewProjectUseCase(store, legacy, pdf.NewMarotoPDFGenerator("test"), log),
		MembershipUC:  membership.NewMembershipUseCase(store, legacy, log),
		Legacy:        legacy,
		InvitationUC:  invitation.NewInvitationUseCase(store, legacy, invitation.Config{DefaultTTL: time.Hour, DefaultMaxUses: 1}, log, prom),
		DeliverableUC: deliverables,
		Gate:          access.NewGate(store.Repos(), log, prom),
		Metrics:       prom,
		Log:           log,
		JWTSecret:     testJWTSecret,
	})
	return &apiHarness{t: t, app: app}
}

func (h *apiHarness) do(method, path, userID, role string, body any) (int, []byte) {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", tokenFor(h.t, userID, role))
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func errorCode(t *testing.T, b []byte) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, b).Code
}

func (h *apiHarness) createProject() dto.ProjectResponse {
	h.t.Helper()
	sid, did := studentID, directorID
	status, body := h.do(http.MethodPost, "/api/projects", coordID, "coordinador", dto.CreateProjectRequest{
		Title: "Sistema de riego", StudentID: &sid, DirectorID: &did,
	})
	require.Equal(h.t, http.StatusCreated, status, string(body))
	return decode[dto.ProjectResponse](h.t, body)
}

func TestLogin(t *testing.T) {
	h := newAPIHarness(t)

	status, body := h.do(http.MethodPost, "/api/auth/login", "", "", dto.LoginRequest{Email: "est@u.edu", Password: password})
	require.Equal(t, http.StatusOK, status, string(body))
	out := decode[dto.LoginResponse](t, body)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, studentID, out.User.ID)

	status, body = h.do(http.MethodPost, "/api/auth/login", "", "", dto.LoginRequest{Email: "est@u.edu", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	status, body = h.do(http.MethodPost, "/api/auth/login", "", "", dto.LoginRequest{Email: "no-es-email"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestCreateProject_SoloCoordinadorOAdmin(t *testing.T) {
	h := newAPIHarness(t)

	status, body := h.do(http.MethodPost, "/api/projects", studentID, "estudiante", dto.CreateProjectRequest{Title: "Tesis"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	p := h.createProject()
	require.NotNil(t, p.StudentID)
	require.NotNil(t, p.DirectorID)
	assert.Equal(t, studentID, *p.StudentID)
	assert.Equal(t, directorID, *p.DirectorID)
	assert.Equal(t, entity.ProjectStatusDraft, p.Status)
}

func TestProjectView_SinAccesoRetorna403(t *testing.T) {
	h := newAPIHarness(t)
	p := h.createProject()

	status, body := h.do(http.MethodGet, "/api/projects/"+p.ID+"/members", outsiderID, "evaluador", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	status, body = h.do(http.MethodGet, "/api/projects/"+p.ID+"/members", studentID, "estudiante", nil)
	require.Equal(t, http.StatusOK, status)
	members := decode[[]dto.MembershipResponse](t, body)
	assert.Len(t, members, 3)

	status, body = h.do(http.MethodGet, "/api/projects/00000000-0000-0000-0000-00000000dead/members", studentID, "estudiante", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestAddMember_DuplicadoRetorna409(t *testing.T) {
	h := newAPIHarness(t)
	p := h.createProject()

	status, body := h.do(http.MethodPost, "/api/projects/"+p.ID+"/members", coordID, "coordinador",
		dto.AddMemberRequest{UserID: studentID, Role: "Estudiante"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_MEMBER", errorCode(t, body))

	status, _ = h.do(http.MethodPost, "/api/projects/"+p.ID+"/members", studentID, "estudiante",
		dto.AddMemberRequest{UserID: outsiderID, Role: "evaluador"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.do(http.MethodPost, "/api/projects/"+p.ID+"/members", coordID, "coordinador",
		dto.AddMemberRequest{UserID: outsiderID, Role: "evaluador"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = h.do(http.MethodGet, "/api/projects/"+p.ID, coordID, "coordinador", nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[dto.ProjectResponse](t, body)
	require.NotNil(t, got.EvaluatorID)
	assert.Equal(t, outsiderID, *got.EvaluatorID)
}

func TestDeliverableWorkflow_PorHTTP(t *testing.T) {
	h := newAPIHarness(t)
	p := h.createProject()

	status, body := h.do(http.MethodPost, "/api/projects/"+p.ID+"/phases", directorID, "director",
		map[string]any{"name": "Anteproyecto", "order": 1, "weight": "2"})
	require.Equal(t, http.StatusCreated, status, string(body))
	phase := decode[dto.PhaseResponse](t, body)

	sid := studentID
	status, body = h.do(http.MethodPost, "/api/projects/"+p.ID+"/deliverables", directorID, "director",
		dto.CreateDeliverableRequest{PhaseID: phase.ID, Title: "Documento", AssigneeID: &sid})
	require.Equal(t, http.StatusCreated, status, string(body))
	d := decode[dto.DeliverableResponse](t, body)
	assert.Equal(t, string(entity.StatePending), d.State)

	move := func(userID, role, target string) (int, []byte) {
		return h.do(http.MethodPost, "/api/deliverables/"+d.ID+"/transition", userID, role, dto.TransitionRequest{Target: target})
	}

	status, _ = move(studentID, "estudiante", "en_progreso")
	require.Equal(t, http.StatusOK, status)
	status, _ = move(studentID, "estudiante", "entregado")
	require.Equal(t, http.StatusOK, status)

	status, body = move(studentID, "estudiante", "en_revision")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN_TRANSITION", errorCode(t, body))

	status, _ = move(directorID, "director", "en_revision")
	require.Equal(t, http.StatusOK, status)
	status, _ = move(directorID, "director", "aceptado")
	require.Equal(t, http.StatusOK, status)

	status, body = move(directorID, "director", "pendiente")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ILLEGAL_TRANSITION", errorCode(t, body))

	status, body = move(directorID, "director", "archivado")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, body = h.do(http.MethodPost, "/api/deliverables/"+d.ID+"/comments", directorID, "director",
		dto.CommentRequest{Text: "Buen trabajo"})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, entity.CommentTypeReview, decode[dto.CommentResponse](t, body).Type)

	status, body = h.do(http.MethodGet, "/api/projects/"+p.ID+"/progress", studentID, "estudiante", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decimal.NewFromInt(100).Equal(decode[dto.ProgressResponse](t, body).Progress))

	status, body = h.do(http.MethodPost, "/api/projects/"+p.ID+"/finalize", coordID, "coordinador", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	fin := decode[dto.FinalizeResponse](t, body)
	require.Len(t, fin.Completed, 1)
	assert.Equal(t, string(entity.StateCompleted), fin.Completed[0].State)

	status, body = h.do(http.MethodGet, "/api/deliverables/"+d.ID+"/history", studentID, "estudiante", nil)
	require.Equal(t, http.StatusOK, status)
	hist := decode[dto.HistoryResponse](t, body)
	require.Len(t, hist.Transitions, 5)
	assert.Nil(t, hist.Transitions[4].ActorID)
	assert.Len(t, hist.Comments, 1)
}

func TestInvitation_PorHTTP(t *testing.T) {
	h := newAPIHarness(t)
	p := h.createProject()

	status, body := h.do(http.MethodPost, "/api/projects/"+p.ID+"/invitations", directorID, "director",
		dto.CreateInvitationRequest{Role: "coordinador"})
	assert.Equal(t, http.StatusForbidden, status, string(body))

	status, body = h.do(http.MethodPost, "/api/projects/"+p.ID+"/invitations", directorID, "director",
		dto.CreateInvitationRequest{Role: "evaluador"})
	require.Equal(t, http.StatusCreated, status, string(body))
	inv := decode[dto.InvitationResponse](t, body)
	assert.Equal(t, 1, inv.MaxUses)

	status, body = h.do(http.MethodPost, "/api/invitations/"+inv.Code+"/accept", outsiderID, "evaluador", nil)
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, string(entity.RoleEvaluator), decode[dto.MembershipResponse](t, body).Role)

	status, body = h.do(http.MethodPost, "/api/invitations/"+inv.Code+"/accept", coordID, "coordinador", nil)
	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, "INVITATION_EXHAUSTED", errorCode(t, body))

	status, body = h.do(http.MethodPost, "/api/invitations/no-existe/accept", coordID, "coordinador", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestIDsGuardadosSobrevivenPeticionesPosteriores(t *testing.T) {
	h := newAPIHarness(t)
	projects := []dto.ProjectResponse{h.createProject(), h.createProject()}

	sid := studentID
	deliverables := map[string]string{}
	codes := map[string]string{}
	for _, p := range projects {
		status, body := h.do(http.MethodPost, "/api/projects/"+p.ID+"/phases", directorID, "director",
			map[string]any{"name": "Anteproyecto", "order": 1})
		require.Equal(t, http.StatusCreated, status, string(body))
		phase := decode[dto.PhaseResponse](t, body)

		status, body = h.do(http.MethodPost, "/api/projects/"+p.ID+"/deliverables", directorID, "director",
			dto.CreateDeliverableRequest{PhaseID: phase.ID, Title: "Documento", AssigneeID: &sid})
		require.Equal(t, http.StatusCreated, status, string(body))
		deliverables[p.ID] = decode[dto.DeliverableResponse](t, body).ID

		status, body = h.do(http.MethodPost, "/api/projects/"+p.ID+"/invitations", directorID, "director",
			dto.CreateInvitationRequest{Role: "evaluador"})
		require.Equal(t, http.StatusCreated, status, string(body))
		codes[p.ID] = decode[dto.InvitationResponse](t, body).Code
	}

	// tráfico intermedio con otras rutas y otros params
	for i := 0; i < 5; i++ {
		for _, p := range projects {
			status, _ := h.do(http.MethodGet, "/api/projects/"+p.ID+"/members", studentID, "estudiante", nil)
			require.Equal(t, http.StatusOK, status)
		}
		status, _ := h.do(http.MethodPost, "/api/invitations/ffffffffffffffffffffffffffffffff/accept", coordID, "coordinador", nil)
		require.Equal(t, http.StatusNotFound, status)
	}

	for _, p := range projects {
		status, body := h.do(http.MethodGet, "/api/deliverables/"+deliverables[p.ID], studentID, "estudiante", nil)
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Equal(t, p.ID, decode[dto.DeliverableResponse](t, body).ProjectID)

		status, body = h.do(http.MethodGet, "/api/projects/"+p.ID+"/deliverables", studentID, "estudiante", nil)
		require.Equal(t, http.StatusOK, status, string(body))
		list := decode[[]dto.DeliverableResponse](t, body)
		require.Len(t, list, 1)
		assert.Equal(t, deliverables[p.ID], list[0].ID)

		status, body = h.do(http.MethodGet, "/api/projects/"+p.ID+"/invitations", directorID, "director", nil)
		require.Equal(t, http.StatusOK, status, string(body))
		invs := decode[[]dto.InvitationResponse](t, body)
		require.Len(t, invs, 1)
		assert.Equal(t, codes[p.ID], invs[0].Code)
		assert.Equal(t, p.ID, invs[0].ProjectID)
	}
}

func TestReportYMetrics(t *testing.T) {
	h := newAPIHarness(t)
	p := h.createProject()

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+p.ID+"/report", nil)
	req.Header.Set("Authorization", tokenFor(t, directorID, "director"))
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	status, body := h.do(http.MethodGet, "/metrics", "", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "proyectos_test_http_request_duration_seconds")
}
