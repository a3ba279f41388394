package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/timewise-api/internal/repository"
	"github.com/yukikurage/timewise-api/internal/services"
	"github.com/yukikurage/timewise-api/internal/testutil"
	"github.com/yukikurage/timewise-api/internal/token"
	"go.uber.org/zap"
)

// APITestSuite drives the full router over HTTP
type APITestSuite struct {
	suite.Suite
	tokens *token.Service
	svc    Services
	engine *gin.Engine
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(s.T())
	store := repository.NewStore(db)
	s.tokens = token.NewService("router-secret", "timewise-test")
	log := zap.NewNop()

	s.svc = Services{
		Auth: services.NewAuthService(store, s.tokens, &testutil.Recorder{}, services.AuthConfig{
			AccessTokenTTL:       time.Hour,
			PasswordResetTTL:     15 * time.Minute,
			EmailVerificationTTL: time.Hour,
			FrontendURL:          "http://app.test",
		}, log),
		Settings:  services.NewSettingsService(store),
		Tasks:     services.NewTaskService(store),
		Progress:  services.NewProgressService(store),
		Analytics: services.NewAnalyticsService(store),
		Admin:     services.NewAdminService(store, log),
	}
	s.engine = New(store, s.tokens, s.svc, log)
}

func (s *APITestSuite) request(method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		s.Require().NoError(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

// register signs up username and returns the access token and user ID
func (s *APITestSuite) register(username string) (string, string) {
	w, body := s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@x.com",
		"password": "pw123",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func (s *APITestSuite) TestHealth() {
	w, body := s.request(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("ok", body["status"])
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *APITestSuite) TestRegisterAndLogin() {
	s.register("alice")

	w, body := s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "pw123",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotEmpty(body["token"])
	user := body["user"].(map[string]any)
	s.Equal("USER", user["role"])
	s.NotContains(w.Body.String(), "password")

	w, _ = s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "wrong",
	})
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@x.com",
		"password": "pw123",
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *APITestSuite) TestAuthentication() {
	w, _ := s.request(http.MethodGet, "/api/v1/tasks", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.request(http.MethodGet, "/api/v1/tasks", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.request(http.MethodGet, "/api/v1/auth/logout", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestAdminRoleManagement() {
	userToken, userID := s.register("alice")
	adminToken, adminID := s.register("boss")
	_, err := s.svc.Admin.UpdateRole(context.Background(), adminID, "ADMIN")
	s.Require().NoError(err)

	w, _ := s.request(http.MethodGet, "/api/v1/admin/users", userToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, body := s.request(http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(body["users"], 2)

	w, _ = s.request(http.MethodPut, "/api/v1/admin/users/"+userID+"/role", adminToken, map[string]string{"role": "ADMIN"})
	s.Require().Equal(http.StatusOK, w.Code)

	w, body = s.request(http.MethodGet, "/api/v1/admin/users/"+userID, adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("ADMIN", body["role"])

	w, _ = s.request(http.MethodPut, "/api/v1/admin/users/"+userID+"/role", adminToken, map[string]string{"role": "OWNER"})
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.request(http.MethodGet, "/api/v1/admin/users/missing", adminToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestRoleUpdateForbiddenForUserRegardlessOfPayload() {
	userToken, userID := s.register("alice")
	_, targetID := s.register("bob")

	for _, body := range []any{
		map[string]string{"role": "ADMIN"},
		map[string]string{"role": "OWNER"},
		map[string]string{},
		"",
	} {
		for _, id := range []string{targetID, userID} {
			w, resp := s.request(http.MethodPut, "/api/v1/admin/users/"+id+"/role", userToken, body)
			s.Equal(http.StatusForbidden, w.Code, "payload %v", body)
			s.Equal("FORBIDDEN", resp["code"])
		}
	}

	for _, id := range []string{targetID, userID} {
		user, err := s.svc.Admin.GetUser(context.Background(), id)
		s.Require().NoError(err)
		s.Equal("USER", string(user.Role))
	}
}

func (s *APITestSuite) TestTaskOwnership() {
	aliceToken, _ := s.register("alice")
	bobToken, _ := s.register("bob")

	w, body := s.request(http.MethodPost, "/api/v1/tasks", bobToken, map[string]string{"title": "Bob's task", "description": "private"})
	s.Require().Equal(http.StatusCreated, w.Code)
	taskID := body["id"].(string)

	w, _ = s.request(http.MethodGet, "/api/v1/tasks/"+taskID, aliceToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.request(http.MethodPut, "/api/v1/tasks/"+taskID, aliceToken, map[string]string{"title": "mine now"})
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.request(http.MethodGet, "/api/v1/tasks/00000000-0000-0000-0000-000000000000", aliceToken, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, body = s.request(http.MethodGet, "/api/v1/tasks/"+taskID, bobToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Bob's task", body["title"])

	w, body = s.request(http.MethodPut, "/api/v1/tasks/"+taskID, bobToken, `{"title":"x","owner":"alice"}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("UNKNOWN_FIELD", body["code"])
}

func (s *APITestSuite) TestProgressAndAnalytics() {
	aliceToken, _ := s.register("alice")
	bobToken, _ := s.register("bob")

	w, body := s.request(http.MethodGet, "/api/v1/analytics", aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(0, body["total_tasks"])
	s.EqualValues(0, body["completed_tasks"])
	s.Equal("0:00:00", body["total_time_spent"])

	w, body = s.request(http.MethodPost, "/api/v1/tasks", aliceToken, map[string]string{"title": "Deep work", "description": "focus block"})
	s.Require().Equal(http.StatusCreated, w.Code)
	taskID := body["id"].(string)

	w, body = s.request(http.MethodPost, "/api/v1/progress", aliceToken, map[string]string{
		"task_id":     taskID,
		"description": "writing",
		"status":      "in_progress",
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	sessionID := body["id"].(string)

	w, _ = s.request(http.MethodPost, "/api/v1/progress", aliceToken, map[string]string{
		"task_id":     taskID,
		"description": "again",
		"status":      "in_progress",
	})
	s.Equal(http.StatusConflict, w.Code)

	w, _ = s.request(http.MethodGet, "/api/v1/progress/"+sessionID, bobToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.request(http.MethodPost, "/api/v1/progress/"+sessionID+"/stop", aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = s.request(http.MethodPost, "/api/v1/progress/"+sessionID+"/stop", aliceToken, nil)
	s.Equal(http.StatusConflict, w.Code)

	w, _ = s.request(http.MethodPost, "/api/v1/analytics", bobToken, map[string]any{"task_id": taskID, "total_time_spent": 60})
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.request(http.MethodPost, "/api/v1/analytics", aliceToken, map[string]any{"task_id": taskID, "total_time_spent": 3600})
	s.Require().Equal(http.StatusCreated, w.Code)

	w, _ = s.request(http.MethodPost, "/api/v1/tasks/"+taskID+"/complete", aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w, body = s.request(http.MethodGet, "/api/v1/analytics", aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(1, body["total_tasks"])
	s.EqualValues(1, body["completed_tasks"])
	s.Contains(body["total_time_spent"], "1:00:")
}

func (s *APITestSuite) TestExpiredResetToken() {
	_, userID := s.register("alice")

	expired, err := s.tokens.
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).
		Issue(userID, token.PurposePasswordReset, 15*time.Minute)
	s.Require().NoError(err)

	w, body := s.request(http.MethodPost, "/api/v1/auth/password-reset", "", map[string]string{
		"token":        expired,
		"new_password": "newpass",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_TOKEN", body["code"])

	w, _ = s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "pw123",
	})
	s.Equal(http.StatusOK, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func TestNew_RegistersRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	engine := New(store, token.NewService("x", "y"), Services{
		Tasks:    services.NewTaskService(store),
		Progress: services.NewProgressService(store),
	}, zap.NewNop())

	routes := map[string]bool{}
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"POST /api/v1/auth/register",
		"DELETE /api/v1/auth/delete",
		"POST /api/v1/tasks/:id/complete",
		"POST /api/v1/progress/:id/stop",
		"GET /api/v1/analytics",
		"PUT /api/v1/admin/users/:id/role",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
	require.NotEmpty(t, routes)
}
