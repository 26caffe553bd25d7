package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

type mockOAuthProvider struct {
	getLoginURLFunc  func(state string) string
	exchangeCodeFunc func(ctx context.Context, code string) (*OAuthUserInfo, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	if m.getLoginURLFunc != nil {
		return m.getLoginURLFunc(state)
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if m.exchangeCodeFunc != nil {
		return m.exchangeCodeFunc(ctx, code)
	}
	return nil, errors.New("not implemented")
}

type mockUserRepo struct {
	findByOpenIDFunc func(ctx context.Context, openID string) (*model.User, error)
	upsertFunc       func(ctx context.Context, u model.UserUpsert) error
}

func (m *mockUserRepo) FindByOpenID(ctx context.Context, openID string) (*model.User, error) {
	if m.findByOpenIDFunc != nil {
		return m.findByOpenIDFunc(ctx, openID)
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(ctx context.Context, u model.UserUpsert) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, u)
	}
	return nil
}

// コールバック処理でUPSERTとトークン発行が行われることを検証
func TestService_HandleCallback(t *testing.T) {
	var upserted *model.UserUpsert
	oauth := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			if code != "auth-code" {
				t.Errorf("code = %q, want %q", code, "auth-code")
			}
			return &OAuthUserInfo{
				OpenID:      "openid-123",
				Name:        "山田太郎",
				Email:       "taro@example.com",
				LoginMethod: "oauth",
			}, nil
		},
	}
	repo := &mockUserRepo{
		upsertFunc: func(ctx context.Context, u model.UserUpsert) error {
			upserted = &u
			return nil
		},
	}
	tokens := NewTokenService("test-secret", time.Hour)
	svc := NewService(oauth, repo, tokens)

	token, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback failed: %v", err)
	}

	if upserted == nil {
		t.Fatal("expected Upsert to be called")
	}
	if upserted.OpenID != "openid-123" {
		t.Errorf("upserted.OpenID = %q, want %q", upserted.OpenID, "openid-123")
	}
	if upserted.Name == nil || *upserted.Name != "山田太郎" {
		t.Errorf("upserted.Name = %v, want 山田太郎", upserted.Name)
	}
	if upserted.LastSignedIn == nil {
		t.Error("expected LastSignedIn to be set")
	}

	// 発行されたトークンは同じTokenServiceで検証できる
	openID, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if openID != "openid-123" {
		t.Errorf("openID = %q, want %q", openID, "openid-123")
	}
}

// コード交換に失敗した場合はエラーになることを検証
func TestService_HandleCallback_ExchangeFailure(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return nil, errors.New("invalid code")
		},
	}
	svc := NewService(oauth, &mockUserRepo{}, NewTokenService("test-secret", time.Hour))

	if _, err := svc.HandleCallback(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error for exchange failure")
	}
}

// UPSERT失敗（DB未接続など）はエラーになることを検証
func TestService_HandleCallback_UpsertFailure(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{OpenID: "openid-123", LoginMethod: "oauth"}, nil
		},
	}
	repo := &mockUserRepo{
		upsertFunc: func(ctx context.Context, u model.UserUpsert) error {
			return model.NewDatabaseUnavailableError()
		},
	}
	svc := NewService(oauth, repo, NewTokenService("test-secret", time.Hour))

	_, err := svc.HandleCallback(context.Background(), "auth-code")
	if err == nil {
		t.Fatal("expected error for upsert failure")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeDatabaseUnavailable {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeDatabaseUnavailable)
	}
}

// 有効なトークンからユーザーが解決されることを検証
func TestService_ResolveUser(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	repo := &mockUserRepo{
		findByOpenIDFunc: func(ctx context.Context, openID string) (*model.User, error) {
			if openID != "openid-123" {
				t.Errorf("openID = %q, want %q", openID, "openid-123")
			}
			return &model.User{ID: 7, OpenID: openID, Role: model.RoleAdmin}, nil
		},
	}
	svc := NewService(&mockOAuthProvider{}, repo, tokens)

	token, err := tokens.Issue("openid-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	user := svc.ResolveUser(context.Background(), token)
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != 7 {
		t.Errorf("user.ID = %d, want 7", user.ID)
	}
	if !user.IsAdmin() {
		t.Error("expected admin user")
	}
}

// トークン不正・ユーザー未登録・DB障害はいずれも匿名（nil）に縮退することを検証
func TestService_ResolveUser_DegradesToNil(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	validToken, err := tokens.Issue("openid-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
		repo  *mockUserRepo
	}{
		{
			name:  "空トークン",
			token: "",
			repo:  &mockUserRepo{},
		},
		{
			name:  "不正なトークン",
			token: "garbage",
			repo:  &mockUserRepo{},
		},
		{
			name:  "ユーザー未登録",
			token: validToken,
			repo:  &mockUserRepo{}, // FindByOpenIDはnil, nilを返す
		},
		{
			name:  "リポジトリエラー",
			token: validToken,
			repo: &mockUserRepo{
				findByOpenIDFunc: func(ctx context.Context, openID string) (*model.User, error) {
					return nil, errors.New("connection reset")
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&mockOAuthProvider{}, tt.repo, tokens)
			if user := svc.ResolveUser(context.Background(), tt.token); user != nil {
				t.Errorf("expected nil user, got %+v", user)
			}
		})
	}
}

// 開発用管理者ユーザーの固定属性を検証
func TestDevAdminUser(t *testing.T) {
	user := DevAdminUser()

	if user.ID != 1 {
		t.Errorf("ID = %d, want 1", user.ID)
	}
	if user.OpenID != "dev-admin" {
		t.Errorf("OpenID = %q, want %q", user.OpenID, "dev-admin")
	}
	if user.LoginMethod != "dev" {
		t.Errorf("LoginMethod = %q, want %q", user.LoginMethod, "dev")
	}
	if !user.IsAdmin() {
		t.Error("expected admin role")
	}
}
