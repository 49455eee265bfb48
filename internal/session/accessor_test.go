package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kenta/memoya/internal/model"
	"github.com/kenta/memoya/internal/token"
)

// --- モック定義 ---

type mockStore struct {
	createFn     func(ctx context.Context, session *model.Session) error
	findByIDFn   func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockStore) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockStore) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockStore) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

var _ Store = (*mockStore)(nil)

// mintTokenExpiringAt はexpを指定した署名付きトークンを生成する。
func mintTokenExpiringAt(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	claims := token.Claims{
		UserID: "google-user-123",
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return raw
}

func storeWith(session *model.Session) *mockStore {
	return &mockStore{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if session != nil && id == session.ID {
				return session, nil
			}
			return nil, nil
		},
	}
}

// --- テスト ---

func TestAccessor_Token_ValidToken_ReturnedUnchanged(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	raw := mintTokenExpiringAt(t, now.Add(time.Hour))
	accessor := NewAccessor(storeWith(&model.Session{
		ID:        "session-1",
		User:      model.User{ID: "google-user-123"},
		Token:     raw,
		ExpiresAt: now.Add(24 * time.Hour),
	}))
	accessor.now = func() time.Time { return now }

	got := accessor.Token(ctx, "session-1")
	if got != raw {
		t.Errorf("Token() = %q, want the raw token unchanged", got)
	}
}

func TestAccessor_Token_NoSession_ReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	accessor := NewAccessor(storeWith(nil))

	if got := accessor.Token(ctx, "no-such-session"); got != "" {
		t.Errorf("Token() = %q, want empty string", got)
	}
}

func TestAccessor_Token_EmptySessionID_ReturnsEmpty(t *testing.T) {
	ctx := context.Background()

	called := false
	store := &mockStore{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			called = true
			return nil, nil
		},
	}
	accessor := NewAccessor(store)

	if got := accessor.Token(ctx, ""); got != "" {
		t.Errorf("Token() = %q, want empty string", got)
	}
	if called {
		t.Error("expected no store read for empty session ID")
	}
}

func TestAccessor_Token_ExpiredToken_ReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// セッションレコード自体は生きているが、保持トークンのexpが過去
	raw := mintTokenExpiringAt(t, now.Add(-time.Minute))
	accessor := NewAccessor(storeWith(&model.Session{
		ID:        "session-1",
		Token:     raw,
		ExpiresAt: now.Add(24 * time.Hour),
	}))
	accessor.now = func() time.Time { return now }

	if got := accessor.Token(ctx, "session-1"); got != "" {
		t.Errorf("Token() = %q, want empty string for expired token", got)
	}
}

func TestAccessor_Token_MalformedToken_ReturnsEmpty(t *testing.T) {
	ctx := context.Background()

	accessor := NewAccessor(storeWith(&model.Session{
		ID:        "session-1",
		Token:     "not.a-real",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	if got := accessor.Token(ctx, "session-1"); got != "" {
		t.Errorf("Token() = %q, want empty string for malformed token", got)
	}
}

func TestAccessor_Token_StoreError_ReturnsEmpty(t *testing.T) {
	ctx := context.Background()

	accessor := NewAccessor(&mockStore{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, errors.New("store unavailable")
		},
	})

	if got := accessor.Token(ctx, "session-1"); got != "" {
		t.Errorf("Token() = %q, want empty string on store error", got)
	}
}

func TestAccessor_User_ReturnsProfile(t *testing.T) {
	ctx := context.Background()

	accessor := NewAccessor(storeWith(&model.Session{
		ID: "session-1",
		User: model.User{
			ID:    "google-user-123",
			Email: "test@example.com",
			Name:  "Test User",
		},
		Token:     mintTokenExpiringAt(t, time.Now().Add(time.Hour)),
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	user := accessor.User(ctx, "session-1")
	if user == nil {
		t.Fatal("expected non-nil user")
	}
	if user.ID != "google-user-123" {
		t.Errorf("user ID = %q, want %q", user.ID, "google-user-123")
	}
	if user.Name != "Test User" {
		t.Errorf("user name = %q, want %q", user.Name, "Test User")
	}
}

func TestAccessor_User_NoSession_ReturnsNil(t *testing.T) {
	ctx := context.Background()
	accessor := NewAccessor(storeWith(nil))

	if user := accessor.User(ctx, "no-such-session"); user != nil {
		t.Errorf("User() = %+v, want nil", user)
	}
}

func TestAccessor_IsAuthenticated_ConsistentWithToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session *model.Session
		want    bool
	}{
		{
			name: "有効トークン",
			session: &model.Session{
				ID:        "session-1",
				Token:     mintTokenExpiringAt(t, now.Add(time.Hour)),
				ExpiresAt: now.Add(24 * time.Hour),
			},
			want: true,
		},
		{
			name: "期限切れトークン",
			session: &model.Session{
				ID:        "session-1",
				Token:     mintTokenExpiringAt(t, now.Add(-time.Hour)),
				ExpiresAt: now.Add(24 * time.Hour),
			},
			want: false,
		},
		{
			name:    "セッションなし",
			session: nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessor := NewAccessor(storeWith(tt.session))
			accessor.now = func() time.Time { return now }

			got := accessor.IsAuthenticated(ctx, "session-1")
			if got != tt.want {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tt.want)
			}

			// IsAuthenticatedとTokenの空/非空は常に一致する
			tokenEmpty := accessor.Token(ctx, "session-1") == ""
			if got == tokenEmpty {
				t.Error("IsAuthenticated() disagrees with Token() emptiness")
			}
		})
	}
}
