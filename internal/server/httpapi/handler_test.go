package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

type fakeSessions struct {
	registerOut *services.UserSummary
	registerErr error

	loginOut *services.LoginResult
	loginErr error

	refreshOut *services.TokenPair
	refreshErr error

	logoutErr error

	currentOut *services.UserSummary
	currentErr error
}

func (f *fakeSessions) Register(ctx context.Context, name, email, password string) (*services.UserSummary, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}
func (f *fakeSessions) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginOut, nil
}
func (f *fakeSessions) Refresh(ctx context.Context, token string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshOut, nil
}
func (f *fakeSessions) Logout(ctx context.Context, token string) error { return f.logoutErr }
func (f *fakeSessions) CurrentUser(ctx context.Context, userID string) (*services.UserSummary, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.currentOut, nil
}

type fakeProofs struct {
	requestOut  string
	requestErr  error
	completeErr error
	validateErr error

	requestedEmails []string
}

func (f *fakeProofs) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	f.requestedEmails = append(f.requestedEmails, email)
	if f.requestErr != nil {
		return "", f.requestErr
	}
	return f.requestOut, nil
}
func (f *fakeProofs) CompletePasswordReset(ctx context.Context, secret, newPassword string) error {
	return f.completeErr
}
func (f *fakeProofs) ValidateEmail(ctx context.Context, token string) error { return f.validateErr }

const testAccessSecret = "test-access-secret"

func newTestServer(sessions SessionManager, proofs ProofManager) *Server {
	cfg := &config.Config{Addr: ":0", AccessSecret: testAccessSecret}
	return NewServer(cfg, sessions, proofs, nopLogger{})
}

func doRequest(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestRegister_Created(t *testing.T) {
	sessions := &fakeSessions{registerOut: &services.UserSummary{
		ID: "u-1", Email: "alice@example.com", Name: "Alice", Role: "USER",
	}}
	s := newTestServer(sessions, &fakeProofs{})

	w := doRequest(t, s, http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"s3cret-pw"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"alice@example.com"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_Conflict(t *testing.T) {
	s := newTestServer(&fakeSessions{registerErr: common.ErrorAlreadyExists}, &fakeProofs{})

	w := doRequest(t, s, http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"s3cret-pw"}`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already in use")
}

func TestRegister_InvalidBody(t *testing.T) {
	s := newTestServer(&fakeSessions{}, &fakeProofs{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing email", `{"name":"Alice","password":"s3cret-pw"}`},
		{"bad email", `{"name":"Alice","email":"nope","password":"s3cret-pw"}`},
		{"short password", `{"name":"Alice","email":"a@example.com","password":"pw"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPost, "/api/auth/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid request")
		})
	}
}

func TestLogin_OK(t *testing.T) {
	sessions := &fakeSessions{loginOut: &services.LoginResult{
		User:   services.UserSummary{ID: "u-1", Email: "alice@example.com", Role: "USER", EmailVerified: true},
		Tokens: services.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
	}}
	s := newTestServer(sessions, &fakeProofs{})

	w := doRequest(t, s, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"s3cret-pw"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accessToken":"acc"`)
	assert.Contains(t, w.Body.String(), `"refreshToken":"ref"`)
}

func TestLogin_Unauthorized(t *testing.T) {
	s := newTestServer(&fakeSessions{loginErr: common.ErrorUnauthorized}, &fakeProofs{})

	w := doRequest(t, s, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestRefresh_OK(t *testing.T) {
	sessions := &fakeSessions{refreshOut: &services.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}}
	s := newTestServer(sessions, &fakeProofs{})

	w := doRequest(t, s, http.MethodPost, "/api/auth/refresh-token",
		`{"refreshToken":"ref1"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"refreshToken":"ref2"`)
}

func TestRefresh_Unauthorized(t *testing.T) {
	s := newTestServer(&fakeSessions{refreshErr: common.ErrorUnauthorized}, &fakeProofs{})

	w := doRequest(t, s, http.MethodPost, "/api/auth/refresh-token",
		`{"refreshToken":"revoked"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_OK(t *testing.T) {
	s := newTestServer(&fakeSessions{}, &fakeProofs{})

	w := doRequest(t, s, http.MethodPost, "/api/auth/logout",
		`{"refreshToken":"ref1"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "logged out")
}

func TestForgotPassword_SameResponseForAnyEmail(t *testing.T) {
	proofs := &fakeProofs{requestOut: services.PasswordResetRequestedMessage}
	s := newTestServer(&fakeSessions{}, proofs)

	w1 := doRequest(t, s, http.MethodPost, "/api/auth/forgot-password",
		`{"email":"known@example.com"}`, nil)
	w2 := doRequest(t, s, http.MethodPost, "/api/auth/forgot-password",
		`{"email":"unknown@example.com"}`, nil)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, w1.Body.String(), w2.Body.String())
	assert.Equal(t, []string{"known@example.com", "unknown@example.com"}, proofs.requestedEmails)
}

func TestResetPassword_BadToken(t *testing.T) {
	s := newTestServer(&fakeSessions{}, &fakeProofs{completeErr: common.ErrorBadRequest})

	w := doRequest(t, s, http.MethodPost, "/api/auth/reset-password",
		`{"token":"stale","newPassword":"brand-new-pw"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request")
}

func TestResetPassword_OK(t *testing.T) {
	s := newTestServer(&fakeSessions{}, &fakeProofs{})

	w := doRequest(t, s, http.MethodPost, "/api/auth/reset-password",
		`{"token":"secret","newPassword":"brand-new-pw"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "password updated")
}

func TestValidateEmail_OK(t *testing.T) {
	s := newTestServer(&fakeSessions{}, &fakeProofs{})

	w := doRequest(t, s, http.MethodGet, "/api/auth/validate-email/some-token", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "email validated")
}

func TestValidateEmail_Bad(t *testing.T) {
	s := newTestServer(&fakeSessions{}, &fakeProofs{validateErr: common.ErrorBadRequest})

	w := doRequest(t, s, http.MethodGet, "/api/auth/validate-email/forged", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe_RequiresToken(t *testing.T) {
	s := newTestServer(&fakeSessions{}, &fakeProofs{})

	w := doRequest(t, s, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, s, http.MethodGet, "/api/auth/me", "", map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, s, http.MethodGet, "/api/auth/me", "", map[string]string{
		"Authorization": "Basic abc",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_OK(t *testing.T) {
	sessions := &fakeSessions{currentOut: &services.UserSummary{
		ID: "u-1", Email: "alice@example.com", Role: "USER", EmailVerified: true,
	}}
	s := newTestServer(sessions, &fakeProofs{})

	token, err := auth.GenerateToken("u-1", "alice@example.com", models.RoleUser, []byte(testAccessSecret), time.Hour)
	require.NoError(t, err)

	w := doRequest(t, s, http.MethodGet, "/api/auth/me", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u-1"`)
}

func TestMe_WrongSecret(t *testing.T) {
	s := newTestServer(&fakeSessions{}, &fakeProofs{})

	token, err := auth.GenerateToken("u-1", "alice@example.com", models.RoleUser, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	w := doRequest(t, s, http.MethodGet, "/api/auth/me", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
