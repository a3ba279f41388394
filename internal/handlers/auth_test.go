package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timewise-api/internal/dto"
	"github.com/yukikurage/timewise-api/internal/middleware"
	"github.com/yukikurage/timewise-api/internal/repository"
	"github.com/yukikurage/timewise-api/internal/services"
	"github.com/yukikurage/timewise-api/internal/testutil"
	"github.com/yukikurage/timewise-api/internal/token"
)

type authTestEnv struct {
	router      *gin.Engine
	authService *services.AuthService
	mail        *testutil.Recorder
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterJSONFieldNames()

	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	tokens := token.NewService("handler-secret", "timewise-test")
	mail := &testutil.Recorder{}

	authService := services.NewAuthService(store, tokens, mail, services.AuthConfig{
		AccessTokenTTL:       time.Hour,
		PasswordResetTTL:     15 * time.Minute,
		EmailVerificationTTL: 24 * time.Hour,
		FrontendURL:          "http://app.test",
	}, nil)
	handler := NewAuthHandler(authService, services.NewSettingsService(store), nil)
	guard := middleware.NewGuard(tokens, store.Users(), nil)

	r := gin.New()
	r.POST("/api/v1/auth/register", handler.Register)
	r.POST("/api/v1/auth/login", handler.Login)
	r.GET("/api/v1/auth/logout", handler.LogoutMethodNotAllowed)
	r.POST("/api/v1/auth/password-reset-request", handler.RequestPasswordReset)
	r.POST("/api/v1/auth/password-reset", handler.ResetPassword)
	account := r.Group("/api/v1/auth", guard.RequireAuth(), guard.ResolveActor())
	account.POST("/logout", handler.Logout)
	account.GET("/profile", handler.GetProfile)
	account.PUT("/profile", handler.UpdateProfile)
	account.GET("/settings", handler.GetSettings)
	account.PUT("/settings", handler.UpdateSettings)
	account.DELETE("/delete", handler.DeleteAccount)

	return authTestEnv{router: r, authService: authService, mail: mail}
}

func (env authTestEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{
		"username": "newuser",
		"email":    "new@example.com",
		"password": "supersecret",
	}
	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)
	require.Equal(t, payload["username"], response.User.Username)
	require.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "newuser",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Missing required field: email")

	w = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "newuser",
		"email":    "new@example.com",
		"password": "abc",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Password must be at least 5 characters")
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, _, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.User.Username)

	w = env.do(t, http.MethodGet, "/api/v1/auth/profile", response.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"email":"existing@example.com"`)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, _, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "existing",
		"password": "wrongpass",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	_, tok, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "leaver",
		Email:    "leaver@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w = env.do(t, http.MethodPost, "/api/v1/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_ProfileAndSettings(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, tok, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodPut, "/api/v1/auth/profile", tok, map[string]string{"bio": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"bio":"hello"`)

	w = env.do(t, http.MethodPut, "/api/v1/auth/profile", tok, map[string]string{"role": "ADMIN"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "UNKNOWN_FIELD")

	w = env.do(t, http.MethodPut, "/api/v1/auth/settings", tok, map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/auth/settings", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"theme":"dark"`)
}

func TestAuthHandler_DeletedAccountTokenIsNotFound(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, tok, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "temp",
		Email:    "temp@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodDelete, "/api/v1/auth/delete", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/auth/profile", tok, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, _, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "forgetful",
		Email:    "forgetful@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/v1/auth/password-reset-request", "", map[string]string{"email": "nobody@example.com"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/password-reset-request", "", map[string]string{"email": "forgetful@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "token")

	resetToken := testutil.TokenFromMail(t, env.mail.Last(t))

	w = env.do(t, http.MethodPost, "/api/v1/auth/password-reset", "", map[string]string{
		"token":        "garbage",
		"new_password": "brandnew",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_TOKEN")

	w = env.do(t, http.MethodPost, "/api/v1/auth/password-reset", "", map[string]string{
		"token":        resetToken,
		"new_password": "brandnew",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "forgetful@example.com",
		"password": "brandnew",
	})
	require.Equal(t, http.StatusOK, w.Code)
}
