package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"timeRegistration/internal/app"
	"timeRegistration/internal/models"
	"timeRegistration/internal/repository/inmemory"
	"timeRegistration/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	principals map[string]models.Principal
}

func (v stubVerifier) Verify(token string) (models.Principal, error) {
	p, ok := v.principals[token]
	if !ok {
		return models.Principal{}, errors.New("неизвестный токен")
	}
	return p, nil
}

type testServer struct {
	handler http.Handler
	storage *inmemory.Storage
	alice   models.Principal
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	storage := inmemory.New()
	users := service.NewUserService(storage)
	alice := models.Principal{Subject: uuid.New(), Name: "Алиса", Email: "alice@example.com"}

	router := app.NewRouter(app.RouterConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		Verifier:       stubVerifier{principals: map[string]models.Principal{"alice": alice}},
	}, app.Services{
		Users:     users,
		Customers: service.NewCustomerService(storage, users),
		Projects:  service.NewProjectService(storage, storage, users),
		Tasks:     service.NewTaskService(storage, storage, users),
		Sessions:  service.NewSessionService(storage, storage, users),
		OptOuts:   service.NewOptOutService(storage, users),
		CheckIns:  service.NewCheckInService(storage, users),
		Comments:  service.NewCommentService(storage, storage, users),
		Health:    storage,
	})
	return &testServer{handler: router, storage: storage, alice: alice}
}

func (s *testServer) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) promote(t *testing.T, role models.Role) {
	t.Helper()
	ctx := context.Background()
	user, err := s.storage.GetUserByPrincipal(ctx, s.alice.Subject)
	require.NoError(t, err)
	user.Roles = role
	require.NoError(t, s.storage.UpdateUser(ctx, user))
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/users/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/users/me", "mallory", "").Code)
}

func TestRouter_FirstLoginProvisionsUser(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/api/users/me", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var me map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&me))
	assert.Equal(t, "Алиса", me["name"])
	assert.Equal(t, float64(models.RoleNone), me["roles"])

	// без ролей доступ к данным закрыт
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/customers", "alice", "").Code)
}

func TestRouter_ManagerFlow(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/users/me", "alice", "").Code)
	s.promote(t, models.RoleManager)

	rr := s.do(http.MethodPost, "/api/customers", "alice", `{"name":"ООО Ромашка"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var customer models.Customer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&customer))

	rr = s.do(http.MethodPost, "/api/customers", "alice", `{"name":"ООО Ромашка"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodGet, "/api/projects?customerId="+customer.ID.String(), "alice", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/api/sessions?state=UNKNOWN", "alice", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodGet, "/api/customers/"+uuid.NewString(), "alice", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_CheckIns(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/users/me", "alice", "").Code)
	s.promote(t, models.RoleEmployee)

	ctx := context.Background()
	user, err := s.storage.GetUserByPrincipal(ctx, s.alice.Subject)
	require.NoError(t, err)
	day := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	end := day.Add(8 * time.Hour)
	require.NoError(t, s.storage.CreateCheckIn(ctx, &models.CheckInSession{ID: uuid.New(), UserID: user.ID, Period: models.NewPeriod(day, &end)}))

	rr := s.do(http.MethodGet, "/api/users/"+user.ID.String()+"/check-ins", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var checkIns []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&checkIns))
	require.Len(t, checkIns, 1)
	assert.Equal(t, user.ID.String(), checkIns[0]["user_id"])

	rr = s.do(http.MethodGet, "/api/users/"+uuid.NewString()+"/check-ins", "alice", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_CORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr = httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
