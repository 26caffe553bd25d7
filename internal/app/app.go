package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jinbei222125-wq/wojp-corporate/internal/auth"
	"github.com/jinbei222125-wq/wojp-corporate/internal/config"
	"github.com/jinbei222125-wq/wojp-corporate/internal/database"
	"github.com/jinbei222125-wq/wojp-corporate/internal/handler"
	"github.com/jinbei222125-wq/wojp-corporate/internal/logger"
	"github.com/jinbei222125-wq/wojp-corporate/internal/metrics"
	"github.com/jinbei222125-wq/wojp-corporate/internal/middleware"
	"github.com/jinbei222125-wq/wojp-corporate/internal/news"
	"github.com/jinbei222125-wq/wojp-corporate/internal/recruit"
	"github.com/jinbei222125-wq/wojp-corporate/internal/repository"
	"github.com/jinbei222125-wq/wojp-corporate/internal/security"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("app_env", cfg.AppEnv),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を試み、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// DB接続に失敗してもサーバーは縮退モード（公開読み取りは空データ）で起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 2. DB接続（失敗してもnilハンドルで継続する）
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	db := database.OpenIfConfigured(pingCtx, cfg.DatabaseURL)
	cancelPing()
	if db != nil {
		defer db.Close()
		slog.Info("database connection established")
	} else {
		collector.RecordDegradedStart()
	}

	// 3. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db, cfg.OwnerOpenID)
	newsRepo := repository.NewPostgresNewsRepo(db)
	positionRepo := repository.NewPostgresJobPositionRepo(db)

	// 4. セキュリティサービスの初期化
	sanitizer := security.NewContentSanitizer()
	imageGuard := security.NewImageURLGuard()

	// 5. ドメインサービスの初期化
	oauthProvider := auth.NewPortalOAuthProvider(auth.PortalOAuthConfig{
		PortalURL:   cfg.OAuthPortalURL,
		AppID:       cfg.OAuthAppID,
		AppSecret:   cfg.OAuthAppSecret,
		RedirectURL: cfg.OAuthRedirectURL,
	})
	tokenService := auth.NewTokenService(cfg.SessionSecret, time.Duration(cfg.SessionMaxAge)*time.Second)
	authService := auth.NewService(oauthProvider, userRepo, tokenService)

	imageVerifier := news.NewImageVerifier(imageGuard)
	newsService := news.NewService(newsRepo, sanitizer, imageGuard, imageVerifier)
	recruitService := recruit.NewService(positionRepo)

	// 6. レート制限の初期化（configはreq/min単位、rate.Limitはreq/sec単位）
	rlCfg := middleware.DefaultRateLimiterConfig()
	rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rlCfg.GeneralBurst = cfg.RateLimitGeneral
	rlCfg.AdminWriteRate = rate.Limit(float64(cfg.RateLimitAdminWrite) / 60.0)
	rlCfg.AdminWriteBurst = cfg.RateLimitAdminWrite
	rateLimiter := middleware.NewRateLimiter(rlCfg)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		UserResolver:      authService,
		DevAdminEnabled:   cfg.DevAdminEnabled,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: rateLimiter,
		HTTPMetrics: collector,

		DB:             db,
		MetricsHandler: metrics.Handler(registry),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
		AuthMetrics: collector,

		NewsService: newsService,
		FeedConfig: news.FeedConfig{
			SiteTitle:       cfg.SiteTitle,
			SiteDescription: cfg.SiteDescription,
			BaseURL:         cfg.BaseURL,
		},

		RecruitService: recruitService,

		ContentMetrics: collector,
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.Bool("degraded", db == nil),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
// 縮退モードとは異なり、マイグレーションはDATABASE_URL必須。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migration")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
