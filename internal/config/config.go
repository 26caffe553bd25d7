package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// 未設定の場合、サーバーは縮退モード（公開読み取りのみ）で起動する。
	DatabaseURL string

	// OAuth
	OAuthPortalURL   string
	OAuthAppID       string
	OAuthAppSecret   string
	OAuthRedirectURL string

	// Session
	SessionSecret string
	SessionMaxAge int

	// Identity
	// OwnerOpenIDに一致するopenIdのユーザーは初回ログイン時にadminになる。
	OwnerOpenID string
	// DevAdminEnabledはAPP_ENVがproduction以外のときのみtrue。
	// 起動時に1回だけ解決し、リクエスト処理中は再評価しない。
	AppEnv          string
	DevAdminEnabled bool

	// Rate Limit
	RateLimitGeneral    int
	RateLimitAdminWrite int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Site
	// RSSフィードのチャンネル情報に使用する。
	SiteTitle       string
	SiteDescription string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（無くてもエラーにしない）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.OAuthPortalURL = os.Getenv("OAUTH_PORTAL_URL")
	if cfg.OAuthPortalURL == "" {
		missing = append(missing, "OAUTH_PORTAL_URL")
	}

	cfg.OAuthAppID = os.Getenv("OAUTH_APP_ID")
	if cfg.OAuthAppID == "" {
		missing = append(missing, "OAUTH_APP_ID")
	}

	cfg.OAuthAppSecret = os.Getenv("OAUTH_APP_SECRET")
	if cfg.OAuthAppSecret == "" {
		missing = append(missing, "OAUTH_APP_SECRET")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// DATABASE_URLは意図的に任意。未設定でも公開サイトは空データで稼働する。
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	// Optional fields with defaults
	cfg.OAuthRedirectURL = getEnvString("OAUTH_REDIRECT_URL", cfg.BaseURL+"/api/oauth/callback")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.OwnerOpenID = getEnvString("OWNER_OPEN_ID", "")
	cfg.AppEnv = getEnvString("APP_ENV", "production")
	cfg.DevAdminEnabled = cfg.AppEnv != "production"
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAdminWrite = getEnvInt("RATE_LIMIT_ADMIN_WRITE", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.SiteTitle = getEnvString("SITE_TITLE", "コーポレートサイト")
	cfg.SiteDescription = getEnvString("SITE_DESCRIPTION", "お知らせ一覧")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
