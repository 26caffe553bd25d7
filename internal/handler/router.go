package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jinbei222125-wq/wojp-corporate/internal/middleware"
	"github.com/jinbei222125-wq/wojp-corporate/internal/news"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	UserResolver      middleware.UserResolver
	DevAdminEnabled   bool
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPMetricsRecorder

	// ヘルスチェック。縮退モード時はnil。
	DB *sql.DB

	// メトリクス公開エンドポイント。nilの場合は/metricsを公開しない。
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig
	AuthMetrics LoginRecorder

	// お知らせ
	NewsService NewsServiceInterface
	FeedConfig  news.FeedConfig

	// 採用情報
	RecruitService RecruitServiceInterface

	// コンテンツ書き込みメトリクス。nil可。
	ContentMetrics ContentWriteRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Identity → Logging → Metrics → Recovery → SecurityHeaders → CORS → RateLimit(General)
//
// Identityミドルウェアは未認証リクエストを拒否しない。認可は
// RequireAdminを管理ルートグループにのみ適用して行う。
// IdentityはLoggingより先に実行され、アクセスログにopen_idが記録される。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewIdentityMiddleware(deps.UserResolver, deps.DevAdminEnabled))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.CSRFConfig.CookieSecure))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(deps.RateLimiter.GeneralMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.AuthMetrics)
	newsHandler := NewNewsHandler(deps.NewsService, deps.FeedConfig, deps.ContentMetrics)
	recruitHandler := NewRecruitHandler(deps.RecruitService, deps.ContentMetrics)

	// --- 運用系ルート ---
	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証ルート（OAuthフロー） ---
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})
	r.Get("/api/oauth/callback", authHandler.Callback)
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 公開ルート ---
	r.Route("/api/news", func(r chi.Router) {
		r.Get("/", newsHandler.ListPublished)
		r.Get("/categories", newsHandler.Categories)
		r.Get("/{id}", newsHandler.GetPublished)
	})
	r.Get("/news/feed", newsHandler.Feed)
	r.Route("/api/recruit/positions", func(r chi.Router) {
		r.Get("/", recruitHandler.ListActive)
		r.Get("/{id}", recruitHandler.GetByID)
	})

	// --- 管理ルート ---
	// ミドルウェアスタック: RequireAdmin → CSRF → RateLimit(AdminWrite)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.AdminWriteMiddleware())

		r.Route("/news", func(r chi.Router) {
			r.Get("/", newsHandler.ListAll)
			r.Post("/", newsHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", newsHandler.Update)
				r.Delete("/", newsHandler.Delete)
			})
		})
		r.Route("/recruit/positions", func(r chi.Router) {
			r.Get("/", recruitHandler.ListAll)
			r.Post("/", recruitHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", recruitHandler.Update)
				r.Delete("/", recruitHandler.Delete)
			})
		})
	})

	return r
}
