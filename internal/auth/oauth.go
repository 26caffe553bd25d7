package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// OAuthUserInfo はOAuthポータルから取得したユーザー情報を表す。
// OpenIDはIdPが発行する安定した識別子で、usersテーブルの一意キーとなる。
type OAuthUserInfo struct {
	OpenID      string
	Name        string
	Email       string
	LoginMethod string
}

// OAuthProvider はOAuth認証ポータルのインターフェース。
// テストではモック実装に差し替える。
type OAuthProvider interface {
	// GetLoginURL はポータルの認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// PortalOAuthConfig はOAuthポータルプロバイダーの設定。
type PortalOAuthConfig struct {
	PortalURL   string // ポータルのベースURL
	AppID       string
	AppSecret   string
	RedirectURL string

	// テスト用にオーバーライド可能なURL
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// PortalOAuthProvider はOAuthポータル経由の認証を提供する。
type PortalOAuthProvider struct {
	config PortalOAuthConfig
}

// NewPortalOAuthProvider はPortalOAuthProviderを生成する。
func NewPortalOAuthProvider(config PortalOAuthConfig) *PortalOAuthProvider {
	if config.AuthURL == "" {
		config.AuthURL = config.PortalURL + "/app-auth"
	}
	if config.TokenURL == "" {
		config.TokenURL = config.PortalURL + "/api/oauth/token"
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = config.PortalURL + "/api/oauth/userinfo"
	}
	return &PortalOAuthProvider{config: config}
}

// GetLoginURL はポータルの認証URLを生成する。
func (p *PortalOAuthProvider) GetLoginURL(state string) string {
	params := url.Values{
		"appId":       {p.config.AppID},
		"redirectUri": {p.config.RedirectURL},
		"state":       {state},
		"type":        {"signIn"},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// portalTokenResponse はポータルのトークンエンドポイントのレスポンス。
type portalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// portalUserInfo はポータルのユーザー情報エンドポイントのレスポンス。
type portalUserInfo struct {
	OpenID      string `json:"openId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	LoginMethod string `json:"loginMethod"`
}

// ExchangeCode は認可コードをアクセストークンに交換し、ユーザー情報を取得する。
func (p *PortalOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	// 1. 認可コードをアクセストークンに交換
	tokenResp, err := p.exchangeToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	// 2. アクセストークンでユーザー情報を取得
	userInfo, err := p.fetchUserInfo(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	loginMethod := userInfo.LoginMethod
	if loginMethod == "" {
		loginMethod = "oauth"
	}

	return &OAuthUserInfo{
		OpenID:      userInfo.OpenID,
		Name:        userInfo.Name,
		Email:       userInfo.Email,
		LoginMethod: loginMethod,
	}, nil
}

// exchangeToken は認可コードをアクセストークンに交換する。
func (p *PortalOAuthProvider) exchangeToken(ctx context.Context, code string) (*portalTokenResponse, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.config.AppID},
		"client_secret": {p.config.AppSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp portalTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}

	return &tokenResp, nil
}

// fetchUserInfo はアクセストークンでポータルのユーザー情報を取得する。
func (p *PortalOAuthProvider) fetchUserInfo(ctx context.Context, accessToken string) (*portalUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo portalUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}

	if userInfo.OpenID == "" {
		return nil, fmt.Errorf("empty openId in user info response")
	}

	return &userInfo, nil
}

// compile-time interface check
var _ OAuthProvider = (*PortalOAuthProvider)(nil)
