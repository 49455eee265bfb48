package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kenta/memoya/internal/middleware"
	"github.com/kenta/memoya/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

type mockAccessor struct {
	tokenFn           func(ctx context.Context, sessionID string) string
	userFn            func(ctx context.Context, sessionID string) *model.User
	isAuthenticatedFn func(ctx context.Context, sessionID string) bool
}

func (m *mockAccessor) Token(ctx context.Context, sessionID string) string {
	if m.tokenFn != nil {
		return m.tokenFn(ctx, sessionID)
	}
	return ""
}

func (m *mockAccessor) User(ctx context.Context, sessionID string) *model.User {
	if m.userFn != nil {
		return m.userFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAccessor) IsAuthenticated(ctx context.Context, sessionID string) bool {
	if m.isAuthenticatedFn != nil {
		return m.isAuthenticatedFn(ctx, sessionID)
	}
	return m.Token(ctx, sessionID) != ""
}

// --- compile-time interface checks ---
var _ AuthServiceInterface = (*mockAuthService)(nil)
var _ SessionAccessorInterface = (*mockAccessor)(nil)

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

// findCookie はレスポンスから指定名のCookieを探す。
func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestLogin_RedirectsWithStateCookie(t *testing.T) {
	var receivedState string
	service := &mockAuthService{
		getLoginURLFn: func(state string) string {
			receivedState = state
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(service, &mockAccessor{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	stateCookie := findCookie(t, rec, "memoya_oauth_state")
	if stateCookie == nil {
		t.Fatal("expected oauth state cookie to be set")
	}
	if !stateCookie.HttpOnly {
		t.Error("state cookie must be HttpOnly")
	}
	if stateCookie.Value != receivedState {
		t.Error("state cookie value must match the state passed to the provider")
	}

	location := rec.Header().Get("Location")
	if location == "" {
		t.Fatal("expected Location header")
	}
}

func TestCallback_Success_SetsSessionCookieAndRedirects(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			if code != "auth-code-123" {
				t.Errorf("code = %q, want %q", code, "auth-code-123")
			}
			return &model.Session{
				ID:        "session-abc",
				User:      model.User{ID: "google-user-123"},
				Token:     "header.payload.signature",
				ExpiresAt: time.Now().Add(24 * time.Hour),
			}, nil
		},
	}
	h := NewAuthHandler(service, &mockAccessor{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code-123&state=state-xyz", nil)
	req.AddCookie(&http.Cookie{Name: "memoya_oauth_state", Value: "state-xyz"})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusTemporaryRedirect, rec.Body.String())
	}

	sessionCookie := findCookie(t, rec, middleware.SessionCookieName)
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != "session-abc" {
		t.Errorf("session cookie value = %q, want %q", sessionCookie.Value, "session-abc")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	if location := rec.Header().Get("Location"); location != "http://localhost:3000" {
		t.Errorf("Location = %q, want %q", location, "http://localhost:3000")
	}
}

func TestCallback_StateMismatch_Returns400(t *testing.T) {
	tests := []struct {
		name        string
		queryState  string
		cookieState string
	}{
		{name: "stateパラメータなし", queryState: "", cookieState: "state-xyz"},
		{name: "Cookieなし", queryState: "state-xyz", cookieState: ""},
		{name: "不一致", queryState: "state-aaa", cookieState: "state-bbb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			service := &mockAuthService{
				handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
					called = true
					return nil, nil
				},
			}
			h := NewAuthHandler(service, &mockAccessor{}, testAuthConfig())

			url := "/auth/google/callback?code=auth-code-123"
			if tt.queryState != "" {
				url += "&state=" + tt.queryState
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.cookieState != "" {
				req.AddCookie(&http.Cookie{Name: "memoya_oauth_state", Value: tt.cookieState})
			}
			rec := httptest.NewRecorder()

			h.Callback(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if called {
				t.Error("expected HandleCallback not to be called on state mismatch")
			}

			var apiErr model.APIError
			if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if apiErr.Code != model.ErrCodeInvalidState {
				t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeInvalidState)
			}
		})
	}
}

func TestCallback_MissingCode_Returns400(t *testing.T) {
	// ユーザーキャンセルやプロバイダーエラーはcode欠落として現れる
	h := NewAuthHandler(&mockAuthService{}, &mockAccessor{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=state-xyz&error=access_denied", nil)
	req.AddCookie(&http.Cookie{Name: "memoya_oauth_state", Value: "state-xyz"})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var apiErr model.APIError
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if apiErr.Code != model.ErrCodeAuthFailed {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeAuthFailed)
	}
}

func TestCallback_ServiceError_NormalizedToAuthFailed(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			return nil, errors.New("exchange failed")
		},
	}
	h := NewAuthHandler(service, &mockAccessor{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code-123&state=state-xyz", nil)
	req.AddCookie(&http.Cookie{Name: "memoya_oauth_state", Value: "state-xyz"})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	// セッションCookieは設定されないこと
	if c := findCookie(t, rec, middleware.SessionCookieName); c != nil && c.Value != "" {
		t.Error("expected no session cookie on failure")
	}

	var apiErr model.APIError
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if apiErr.Code != model.ErrCodeAuthFailed {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeAuthFailed)
	}
}

func TestLogout_DeletesSessionAndClearsCookie(t *testing.T) {
	var loggedOutSessionID string
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			loggedOutSessionID = sessionID
			return nil
		},
	}
	h := NewAuthHandler(service, &mockAccessor{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-abc"})
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if loggedOutSessionID != "session-abc" {
		t.Errorf("logged out session ID = %q, want %q", loggedOutSessionID, "session-abc")
	}

	cleared := findCookie(t, rec, middleware.SessionCookieName)
	if cleared == nil {
		t.Fatal("expected session cookie to be cleared")
	}
	if cleared.MaxAge >= 0 {
		t.Errorf("cleared cookie MaxAge = %d, want negative", cleared.MaxAge)
	}

	if rec.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
}

func TestLogout_NoCookie_StillRedirects(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockAccessor{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
}

func TestMe_NoCookie_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockAccessor{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMe_ValidSession_ReturnsUserAndAuthenticated(t *testing.T) {
	accessor := &mockAccessor{
		userFn: func(ctx context.Context, sessionID string) *model.User {
			return &model.User{ID: "google-user-123", Email: "test@example.com", Name: "Test User"}
		},
		isAuthenticatedFn: func(ctx context.Context, sessionID string) bool {
			return true
		},
	}
	h := NewAuthHandler(&mockAuthService{}, accessor, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-abc"})
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		User          *model.User `json:"user"`
		Authenticated bool        `json:"authenticated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.User == nil || body.User.ID != "google-user-123" {
		t.Errorf("user = %+v, want google-user-123", body.User)
	}
	if !body.Authenticated {
		t.Error("authenticated = false, want true")
	}
}

func TestMe_ExpiredToken_AuthenticatedFalse(t *testing.T) {
	// セッションレコードは存在するが保持トークンが期限切れのケース。
	// プロフィールは返しつつ、authenticatedはfalseになる。
	accessor := &mockAccessor{
		userFn: func(ctx context.Context, sessionID string) *model.User {
			return &model.User{ID: "google-user-123"}
		},
		isAuthenticatedFn: func(ctx context.Context, sessionID string) bool {
			return false
		},
	}
	h := NewAuthHandler(&mockAuthService{}, accessor, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-abc"})
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		User          *model.User `json:"user"`
		Authenticated bool        `json:"authenticated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.User == nil {
		t.Fatal("expected user profile even with expired token")
	}
	if body.Authenticated {
		t.Error("authenticated = true, want false for expired token")
	}
}
