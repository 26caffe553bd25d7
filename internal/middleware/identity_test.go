package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

type mockUserResolver struct {
	resolveUserFunc func(ctx context.Context, token string) *model.User
}

func (m *mockUserResolver) ResolveUser(ctx context.Context, token string) *model.User {
	if m.resolveUserFunc != nil {
		return m.resolveUserFunc(ctx, token)
	}
	return nil
}

func TestIdentityMiddleware_ValidCookie_InjectsUser(t *testing.T) {
	resolver := &mockUserResolver{
		resolveUserFunc: func(ctx context.Context, token string) *model.User {
			if token != "valid-token" {
				t.Errorf("token = %q, want %q", token, "valid-token")
			}
			return &model.User{ID: 7, OpenID: "openid-123", Role: model.RoleUser}
		},
	}
	mw := NewIdentityMiddleware(resolver, false)

	var gotUser *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if gotUser == nil {
		t.Fatal("expected user in context")
	}
	if gotUser.OpenID != "openid-123" {
		t.Errorf("OpenID = %q, want %q", gotUser.OpenID, "openid-123")
	}
}

func TestIdentityMiddleware_NoCookie_ProceedsAsAnonymous(t *testing.T) {
	mw := NewIdentityMiddleware(&mockUserResolver{}, false)

	handlerCalled := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		if user := UserFromContext(r.Context()); user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !handlerCalled {
		t.Fatal("handler should have been called for anonymous request")
	}
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestIdentityMiddleware_InvalidToken_ProceedsAsAnonymous(t *testing.T) {
	resolver := &mockUserResolver{
		resolveUserFunc: func(ctx context.Context, token string) *model.User {
			return nil
		},
	}
	mw := NewIdentityMiddleware(resolver, false)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := UserFromContext(r.Context()); user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestIdentityMiddleware_DevAdminQueryParam_Enabled(t *testing.T) {
	resolverCalled := false
	resolver := &mockUserResolver{
		resolveUserFunc: func(ctx context.Context, token string) *model.User {
			resolverCalled = true
			return nil
		},
	}
	mw := NewIdentityMiddleware(resolver, true)

	var gotUser *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/news?devAdmin=true", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if gotUser == nil {
		t.Fatal("expected dev admin user in context")
	}
	if gotUser.OpenID != "dev-admin" {
		t.Errorf("OpenID = %q, want %q", gotUser.OpenID, "dev-admin")
	}
	if !gotUser.IsAdmin() {
		t.Error("expected admin role")
	}
	if resolverCalled {
		t.Error("resolver should not be called for dev admin bypass")
	}
}

func TestIdentityMiddleware_DevAdminHeader_Enabled(t *testing.T) {
	mw := NewIdentityMiddleware(&mockUserResolver{}, true)

	var gotUser *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/news", nil)
	req.Header.Set("X-Dev-Admin", "true")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if gotUser == nil || gotUser.OpenID != "dev-admin" {
		t.Fatalf("expected dev admin user, got %+v", gotUser)
	}
}

// 本番相当（無効化時）はバイパス指定があっても通常の解決を行う
func TestIdentityMiddleware_DevAdmin_DisabledInProduction(t *testing.T) {
	mw := NewIdentityMiddleware(&mockUserResolver{}, false)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := UserFromContext(r.Context()); user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/news?devAdmin=true", nil)
	req.Header.Set("X-Dev-Admin", "true")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
}

func TestIdentityMiddleware_DevAdmin_IgnoresOtherValues(t *testing.T) {
	mw := NewIdentityMiddleware(&mockUserResolver{}, true)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := UserFromContext(r.Context()); user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/news?devAdmin=1", nil)
	req.Header.Set("X-Dev-Admin", "yes")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
}

func TestUserFromContext_NoUser_ReturnsNil(t *testing.T) {
	if user := UserFromContext(context.Background()); user != nil {
		t.Errorf("expected nil, got %+v", user)
	}
}

func TestContextWithUser_RoundTrip(t *testing.T) {
	u := &model.User{ID: 1, OpenID: "openid-123"}
	ctx := ContextWithUser(context.Background(), u)

	got := UserFromContext(ctx)
	if got != u {
		t.Errorf("got %+v, want %+v", got, u)
	}
}
