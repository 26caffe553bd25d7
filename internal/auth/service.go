// Package auth はOAuth認証フローとセッショントークン管理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
	"github.com/jinbei222125-wq/wojp-corporate/internal/repository"
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	userRepo repository.UserRepository
	tokens   *TokenService
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, userRepo repository.UserRepository, tokens *TokenService) *Service {
	return &Service{
		oauth:    oauth,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// GetLoginURL はOAuthポータルの認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッショントークンを発行する。
// ユーザーレコードはopen_idをキーに冪等にUPSERTされる。
// 初回ログインで行が作成され、以降のログインではname/email/login_method/
// last_signed_inが更新される。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. ユーザーをUPSERT（ログインの都度last_signed_inを更新）
	now := time.Now()
	upsert := model.UserUpsert{
		OpenID:       userInfo.OpenID,
		Name:         &userInfo.Name,
		Email:        &userInfo.Email,
		LoginMethod:  &userInfo.LoginMethod,
		LastSignedIn: &now,
	}
	if err := s.userRepo.Upsert(ctx, upsert); err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}

	// 3. セッショントークンを発行
	token, err := s.tokens.Issue(userInfo.OpenID)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("open_id", userInfo.OpenID),
		slog.String("login_method", userInfo.LoginMethod),
	)

	return token, nil
}

// ResolveUser はセッショントークンから現在のユーザーを解決する。
// トークン不正・ユーザー未登録の場合はnilを返す（エラーにはしない）。
// 認証の失敗は匿名ユーザーへの縮退であり、公開手続きの実行を妨げない。
func (s *Service) ResolveUser(ctx context.Context, tokenStr string) *model.User {
	if tokenStr == "" {
		return nil
	}

	openID, err := s.tokens.Parse(tokenStr)
	if err != nil {
		return nil
	}

	user, err := s.userRepo.FindByOpenID(ctx, openID)
	if err != nil {
		slog.Error("failed to find user by open_id",
			slog.String("error", err.Error()),
		)
		return nil
	}

	return user
}

// DevAdminUser は開発モード用の固定管理者ユーザーを生成する。
// 本番環境では到達不能であること（config.DevAdminEnabledによるゲート）。
// データベースにもOAuthポータルにも一切アクセスしない。
func DevAdminUser() *model.User {
	now := time.Now()
	return &model.User{
		ID:           1,
		OpenID:       "dev-admin",
		Name:         "開発用管理者",
		Email:        "dev@example.com",
		LoginMethod:  "dev",
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
}
