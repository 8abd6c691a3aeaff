package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskboard/assignment"
	"taskboard/config"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/service"
	"taskboard/store"
)

type testServer struct {
	handler http.Handler
	store   *store.MemoryStore
	admin   *models.Employee
	alice   *models.Employee
	bob     *models.Employee
	design  *models.Team
	task    *models.Task
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	middleware.SetJWTSecret("test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	s := &testServer{store: store.NewMemoryStore()}
	s.admin = &models.Employee{Username: "admin", Name: "Admin", PasswordHash: string(hash), Role: models.RoleAdmin}
	s.alice = &models.Employee{Username: "alice", Name: "Alice", PasswordHash: string(hash), Role: models.RoleStaff}
	s.bob = &models.Employee{Username: "bob", Name: "Bob", PasswordHash: string(hash), Role: models.RoleStaff}
	for _, e := range []*models.Employee{s.admin, s.alice, s.bob} {
		require.NoError(t, s.store.CreateEmployee(ctx, e))
	}
	s.design = &models.Team{Name: "Design", Members: []models.Employee{*s.alice}}
	require.NoError(t, s.store.CreateTeam(ctx, s.design))

	s.task = &models.Task{Name: "Launch", Checklist: []models.ChecklistItem{{Title: "Draft"}}}
	require.NoError(t, s.store.CreateTask(ctx, s.task))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{JWTExpiration: time.Hour}
	svc := service.NewTaskService(s.store, logger)
	s.handler = NewRouter(
		NewAuthHandler(cfg, s.store, logger),
		NewAssignmentHandler(svc, logger),
		NewTaskHandler(svc, logger),
		s.store.GetEmployee,
	)
	return s
}

func (s *testServer) token(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/login", "", map[string]string{"username": username, "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", "", map[string]string{"username": "nobody", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.token(t, "alice")
	rec = s.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/api/me", "/api/tasks", "/api/directory"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, `{"error":"missing token"}`, rec.Body.String())
	}
}

func TestDirectory(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/directory", s.token(t, "alice"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Teams []directoryTeam `json:"teams"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Teams, 2)
	assert.Equal(t, "unassigned", resp.Teams[0].ID)
	assert.ElementsMatch(t, []string{s.admin.ID, s.bob.ID}, resp.Teams[0].Members)
	assert.Equal(t, []string{s.alice.ID}, resp.Teams[1].Members)
}

func TestAssignmentEngineEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/assignments/normalize", token, map[string]any{
		"raw": []any{map[string]any{"_id": s.design.ID}, s.bob.ID, s.bob.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var normalized struct {
		Entries []assignment.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &normalized))
	assert.Equal(t, []assignment.Entry{
		{Type: assignment.KindTeam, ID: s.design.ID, Name: "Design"},
		{Type: assignment.KindEmployee, ID: s.bob.ID, Name: "Bob"},
	}, normalized.Entries)

	rec = s.do(t, http.MethodPost, "/api/assignments/toggle-team", token, map[string]any{
		"selection": assignment.Selection{},
		"teamId":    s.design.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var sel assignment.Selection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	assert.Equal(t, s.design.ID, sel.ActiveTeam)
	assert.Equal(t, []assignment.Entry{
		{Type: assignment.KindTeam, ID: s.design.ID, Name: "Design"},
		{Type: assignment.KindEmployee, ID: s.alice.ID, Name: "Alice"},
	}, sel.Entries)

	rec = s.do(t, http.MethodPost, "/api/assignments/toggle-employee", token, map[string]any{
		"selection":  sel,
		"employeeId": s.alice.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	assert.Empty(t, sel.Entries)

	rec = s.do(t, http.MethodPost, "/api/assignments/select-all", token, map[string]any{
		"selection": assignment.Selection{ActiveTeam: "unassigned"},
		"search":    "BO",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	assert.Equal(t, []assignment.Entry{{Type: assignment.KindEmployee, ID: s.bob.ID, Name: "Bob"}}, sel.Entries)

	rec = s.do(t, http.MethodPost, "/api/assignments/deselect-all", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/assignments/display", token, map[string]any{
		"entries": []any{s.design.ID, s.alice.ID, s.bob.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"display": {"tokens": [{"label": "Design", "key": "team:`+s.design.ID+`"}], "extra": 1},
		"labels": ["Design", "Bob"]
	}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/assignments/normalize", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskEndpoints(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.token(t, "admin")
	bobToken := s.token(t, "bob")
	path := "/api/tasks/" + s.task.ID

	rec := s.do(t, http.MethodPut, path+"/assignments", bobToken, map[string]any{"raw": []any{s.bob.ID}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	itemPath := path + "/checklist/" + s.task.Checklist[0].ID + "/toggle"
	rec = s.do(t, http.MethodPost, itemPath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, path+"/assignments", adminToken, map[string]any{"raw": []any{s.bob.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, itemPath, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view service.TaskView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "done", string(view.Status))
	assert.Equal(t, 100, view.ChecklistStats.Percent)

	rec = s.do(t, http.MethodPut, path+"/my-status", bobToken, map[string]string{"status": "nonsense"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPut, path+"/my-status", bobToken, map[string]string{"status": "in progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "doing", string(view.MyStatus))

	rec = s.do(t, http.MethodGet, "/api/tasks", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []service.TaskView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = s.do(t, http.MethodGet, "/api/tasks/missing", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/tasks/export.csv", s.token(t, "alice"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/tasks/export.csv", s.token(t, "admin"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, service.ExportHeader, records[0])
	assert.Equal(t, []string{s.task.ID, "Launch", "doing", "MEDIUM", "", "0", "No deadline"}, records[1])
}

func TestToggleNormalizesClientSelection(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "bob")

	// Mixed-case types and untyped ids must match the entries the
	// transitions look for, or toggling would add duplicates.
	rec := s.do(t, http.MethodPost, "/api/assignments/toggle-team", token, map[string]any{
		"selection": map[string]any{
			"entries": []any{
				map[string]any{"type": "Team", "id": s.design.ID},
				map[string]any{"type": "EMPLOYEE", "id": s.alice.ID},
			},
			"activeTeam": s.design.ID,
		},
		"teamId": s.design.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sel assignment.Selection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	assert.Empty(t, sel.Entries)
	assert.Equal(t, "", sel.ActiveTeam)

	rec = s.do(t, http.MethodPost, "/api/assignments/toggle-employee", token, map[string]any{
		"selection":  map[string]any{"entries": []any{map[string]any{"id": s.bob.ID}}},
		"employeeId": s.bob.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	assert.Empty(t, sel.Entries)

	rec = s.do(t, http.MethodPost, "/api/assignments/select-all", token, map[string]any{
		"selection": map[string]any{
			"entries":    []any{map[string]any{"type": "Employee", "id": s.alice.ID}},
			"activeTeam": s.design.ID,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	assert.Equal(t, []assignment.Entry{
		{Type: assignment.KindEmployee, ID: s.alice.ID, Name: "Alice"},
	}, sel.Entries)
}

func TestDeleteTask(t *testing.T) {
	s := newTestServer(t)
	path := "/api/tasks/" + s.task.ID

	rec := s.do(t, http.MethodDelete, path, s.token(t, "bob"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := s.token(t, "admin")
	rec = s.do(t, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
