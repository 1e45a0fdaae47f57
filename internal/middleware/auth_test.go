package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmeshcher/eshop-system/internal/model"
)

type stubResolver struct {
	users map[string]*model.User
	err   error
}

func (s *stubResolver) ResolveUser(_ context.Context, email string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[email]
	if !ok {
		return nil, context.Canceled
	}
	return u, nil
}

func newTestAuth(t *testing.T, ttl time.Duration, resolver UserResolver) *AuthMiddleware {
	t.Helper()

	m, err := NewAuthMiddleware("test-secret", "HS256", ttl, resolver)
	if err != nil {
		t.Fatalf("new auth middleware: %v", err)
	}
	return m
}

func TestAuthMiddleware_WithValidToken(t *testing.T) {
	user := &model.User{ID: 42, Email: "a@x.com", Role: model.RoleUser, IsActive: true}
	m := newTestAuth(t, time.Hour, &stubResolver{users: map[string]*model.User{"a@x.com": user}})

	token, err := m.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		u, ok := GetUserFromContext(r.Context())
		if !ok {
			t.Fatalf("user not in context")
		}
		if u.ID != 42 || u.Email != "a@x.com" {
			t.Fatalf("unexpected user in context: %+v", u)
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestAuthMiddleware_WithoutToken(t *testing.T) {
	m := newTestAuth(t, time.Hour, &stubResolver{})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)

	m.Middleware(next).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	user := &model.User{ID: 1, Email: "a@x.com", Role: model.RoleUser}
	m := newTestAuth(t, -time.Minute, &stubResolver{users: map[string]*model.User{"a@x.com": user}})

	token, err := m.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called for expired token")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	m.Middleware(next).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_UnknownEmail(t *testing.T) {
	// Токен валиден, но пользователь уже удалён из базы.
	user := &model.User{ID: 1, Email: "gone@x.com", Role: model.RoleUser}
	m := newTestAuth(t, time.Hour, &stubResolver{users: map[string]*model.User{}})

	token, err := m.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ForeignSignature(t *testing.T) {
	user := &model.User{ID: 1, Email: "a@x.com", Role: model.RoleAdmin}
	resolver := &stubResolver{users: map[string]*model.User{"a@x.com": user}}

	other, err := NewAuthMiddleware("other-secret", "HS256", time.Hour, resolver)
	if err != nil {
		t.Fatalf("new auth middleware: %v", err)
	}
	token, err := other.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	m := newTestAuth(t, time.Hour, resolver)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestRequireAdmin(t *testing.T) {
	m := newTestAuth(t, time.Hour, &stubResolver{})

	tests := []struct {
		name       string
		user       *model.User
		wantStatus int
	}{
		{name: "admin", user: &model.User{ID: 1, Role: model.RoleAdmin}, wantStatus: http.StatusOK},
		{name: "regular user", user: &model.User{ID: 2, Role: model.RoleUser}, wantStatus: http.StatusForbidden},
		{name: "no user", user: nil, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.user != nil {
				ctx := context.WithValue(r.Context(), currentUserKey, tt.user)
				r = r.WithContext(ctx)
			}

			m.RequireAdmin(next).ServeHTTP(w, r)

			if w.Result().StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
		})
	}
}
