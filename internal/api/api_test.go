package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/marathon-tracker/internal/api"
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/metrics"
	"alcyxob/marathon-tracker/internal/repository/memory"
	"alcyxob/marathon-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "api-test-secret"

var testNow = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

type testServer struct {
	t          *testing.T
	router     *gin.Engine
	userToken  string
	userID     string
	adminToken string
}

func newTestServer(t *testing.T, limiter *api.RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	clock := func() time.Time { return testNow }
	catalog := domain.Catalog{{ID: "bcn", Name: "BARCELONA", TargetDate: testNow.Add(14 * 24 * time.Hour)}}
	store := memory.NewStore()
	metricsManager, registry := metrics.NewTestManagerAndRegistry()

	plans := service.NewPlanService(catalog, store.Definitions, service.NewGenerator(clock, 12), 4)
	require.NoError(t, plans.EnsureWorkouts(ctx))
	progress := service.NewProgressService(catalog, store.Definitions, store.Progress, store.Users, metricsManager)
	users := service.NewUserService(store.Users, catalog, clock)
	auth := service.NewAuthService(store.Users, testSecret, time.Hour)
	export := service.NewExportService(users, plans, progress, nil, metricsManager, clock)
	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "admin-pass"))

	if limiter == nil {
		limiter = api.NewRateLimiter(1000, 1000)
	}
	router := gin.New()
	api.SetupRoutes(router, testSecret, api.Services{
		Auth:     auth,
		Users:    users,
		Plans:    plans,
		Progress: progress,
		Export:   export,
	}, limiter, metricsManager, registry)

	s := &testServer{t: t, router: router}

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "corredor1", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.userToken, s.userID = s.login("corredor1", "secret")
	s.adminToken, _ = s.login("admin", "admin-pass")
	return s
}

func (s *testServer) login(name, password string) (string, string) {
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"name": name, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp api.LoginResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPing(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAuth_RegisterAndLoginErrors(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "CORREDOR1", "password": "secret"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"name": "corredor1", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/me", "garbage", nil).Code)

	w := s.do(http.MethodGet, "/api/v1/me", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[api.UserResponse](t, w)
	assert.Equal(t, "corredor1", me.Name)
	assert.Equal(t, domain.RoleUser, me.Role)
}

func TestRoleMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/admin/users", s.userToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/workouts/bcn-w1-d1/toggle", s.adminToken, nil).Code)

	w := s.do(http.MethodGet, "/api/v1/admin/users", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]api.UserResponse](t, w), 2)
}

func TestWorkoutFlow(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/api/v1/workouts/bcn-w1-d2/toggle", s.userToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/workouts/bcn-w1-d1/toggle", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":"needs_report"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/workouts/bcn-w1-d1/complete", s.userToken, gin.H{
		"actualDistanceKm": "5,5",
		"duration":         "00:30:00",
		"hasInjury":        true,
		"injuryNote":       "calf",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	done := decode[domain.Workout](t, w)
	assert.True(t, done.Completed)
	assert.Equal(t, 5.5, *done.ActualDistanceKm)
	assert.Equal(t, "calf", *done.InjuryNote)

	w = s.do(http.MethodPost, "/api/v1/workouts/bcn-w1-d2/skip", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/v1/workouts/bcn-w1-d2/toggle", s.userToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/workouts/bcn-w1-d3/complete", s.userToken, gin.H{"actualDistanceKm": "lots"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, *decode[domain.Workout](t, w).ActualDistanceKm)

	w = s.do(http.MethodPost, "/api/v1/workouts/bcn-w9-d1/skip", s.userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/plans/bcn/workouts", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[api.WorkoutsResponse](t, w)
	require.Len(t, view.Workouts, 8)
	assert.True(t, view.Workouts[1].Skipped)

	w = s.do(http.MethodGet, "/api/v1/plans/bcn/weeks", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	weeks := decode[[]service.WeekSummary](t, w)
	require.Len(t, weeks, 2)
	assert.Equal(t, 5.5, weeks[0].DoneKm)
	assert.Equal(t, 2, weeks[0].RemainingWeeks)

	w = s.do(http.MethodGet, "/api/v1/plans/bcn/weeks?week=1", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.WeekStats{DoneKm: 5.5}, decode[service.WeekStats](t, w))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/plans/bcn/weeks?week=x", s.userToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/plans/nyc/workouts", s.userToken, nil).Code)
}

func TestProfileAndWeight(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPatch, "/api/v1/me", s.userToken, gin.H{"activePlanId": "bcn", "monthlyKmGoal": 120})
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[api.UserResponse](t, w)
	assert.Equal(t, "bcn", *me.ActivePlanID)

	w = s.do(http.MethodPatch, "/api/v1/me", s.userToken, gin.H{"activePlanId": "nyc"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/v1/me/weight", s.userToken, gin.H{"value": 72.5})
	require.Equal(t, http.StatusOK, w.Code)
	me = decode[api.UserResponse](t, w)
	assert.Equal(t, []domain.WeightEntry{{Month: "2026-01", Value: 72.5}}, me.WeightHistory)

	w = s.do(http.MethodDelete, "/api/v1/me/weight/2026-01", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[api.UserResponse](t, w).WeightHistory)

	w = s.do(http.MethodDelete, "/api/v1/me/weight/2026-01", s.userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPatch, "/api/v1/admin/workouts/bcn-w1-d1", s.adminToken, gin.H{"description": "Easy 6k", "plannedDistanceKm": 6})
	require.Equal(t, http.StatusOK, w.Code)
	def := decode[domain.WorkoutDefinition](t, w)
	assert.Equal(t, "Easy 6k", def.Description)

	w = s.do(http.MethodPatch, "/api/v1/admin/workouts/bcn-w1-d1", s.adminToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/workouts/bcn-w1-d1/skip", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/admin/users/"+s.userID+"/workouts/bcn-w1-d1/progress", s.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/users/"+s.userID+"/plans/bcn/workouts", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[api.WorkoutsResponse](t, w)
	assert.False(t, view.Workouts[0].Skipped)
	assert.Equal(t, 6.0, view.Workouts[0].PlannedDistanceKm)

	w = s.do(http.MethodPost, "/api/v1/admin/users/"+s.userID+"/plans/bcn/export", s.adminToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/admin/users/"+s.userID, s.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/me", s.userToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/admin/users/"+s.userID, s.adminToken, nil).Code)
}

func TestRateLimiter(t *testing.T) {
	// Register and both logins in setup consume the burst.
	s := newTestServer(t, api.NewRateLimiter(0.001, 3))

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"name": "admin", "password": "admin-pass"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Authenticated routes are not limited.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/me", s.userToken, nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodGet, "/ping", "", nil)

	w := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `marathon_test_server_request{method="GET",route="/ping",status="200"} 1`)
}
