// Package app はアプリケーションの起動とワイヤリングを提供する。
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

	"github.com/hitoshi/campushub/internal/auth"
	"github.com/hitoshi/campushub/internal/category"
	"github.com/hitoshi/campushub/internal/config"
	"github.com/hitoshi/campushub/internal/database"
	"github.com/hitoshi/campushub/internal/event"
	"github.com/hitoshi/campushub/internal/handler"
	"github.com/hitoshi/campushub/internal/info"
	"github.com/hitoshi/campushub/internal/jobposting"
	"github.com/hitoshi/campushub/internal/logger"
	"github.com/hitoshi/campushub/internal/metrics"
	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/news"
	"github.com/hitoshi/campushub/internal/opportunity"
	"github.com/hitoshi/campushub/internal/repository"
	"github.com/hitoshi/campushub/internal/security"
	"github.com/hitoshi/campushub/internal/tag"
	"github.com/hitoshi/campushub/internal/web"
)

// sessionCleanupInterval は期限切れセッションの掃除間隔。
const sessionCleanupInterval = time.Hour

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
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リポジトリの初期化
	accountRepo := repository.NewAccountRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	newsRepo := repository.NewNewsRepo(db)
	eventRepo := repository.NewEventRepo(db)
	opportunityRepo := repository.NewOpportunityRepo(db)
	opportunityTypeRepo := repository.NewOpportunityTypeRepo(db)
	categoryRepo := repository.NewJobCategoryRepo(db)
	tagRepo := repository.NewTagRepo(db)
	jobRepo := repository.NewJobPostingRepo(db)
	infoRepo := repository.NewInfoRepo(db)

	// 4. 認証サービスの初期化
	var comparer auth.SecretComparer = auth.PlaintextComparer{}
	if cfg.PasswordScheme == config.PasswordSchemeBcrypt {
		comparer = auth.BcryptComparer{}
	}
	authService := auth.NewService(accountRepo, comparer)
	tokenCodec := auth.NewTokenCodec(cfg.TokenSecret, cfg.TokenTTL)
	sessionManager := auth.NewSessionManager(
		sessionRepo, time.Duration(cfg.SessionMaxAge)*time.Second,
	)

	// 5. ドメインサービスの初期化
	sanitizer := security.NewContentSanitizer()
	newsService := news.NewService(newsRepo, sanitizer)
	eventService := event.NewService(eventRepo, sanitizer)
	opportunityService := opportunity.NewService(opportunityRepo, opportunityTypeRepo, sanitizer)
	jobService := jobposting.NewService(db, jobRepo, tagRepo, sanitizer, collector)
	tagService := tag.NewService(tagRepo)
	categoryService := category.NewService(categoryRepo, jobRepo)
	infoService := info.NewService(infoRepo)

	// 6. レート制限の初期化
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer rateLimiter.Stop()

	// 7. 管理コンソールの構築
	webHandler, err := web.NewHandler(web.Config{
		Auth:          authService,
		Sessions:      sessionManager,
		News:          newsService,
		Recorder:      collector,
		Logger:        slog.Default(),
		Limiter:       rateLimiter,
		CookieSecure:  cfg.CookieSecure,
		CookieDomain:  cfg.CookieDomain,
		SessionMaxAge: cfg.SessionMaxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to build web console: %w", err)
	}

	// 8. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		TokenVerifier:     tokenCodec,
		RequestRecorder:   collector,
		RateLimiter:       rateLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,

		AuthService:        authService,
		TokenIssuer:        tokenCodec,
		LoginRecorder:      collector,
		NewsService:        newsService,
		EventService:       eventService,
		OpportunityService: opportunityService,
		JobPostingService:  jobService,
		TagService:         tagService,
		CategoryService:    categoryService,
		InfoService:        infoService,

		Web:     webHandler.Routes(),
		Metrics: metrics.SetupMetricsRoute(registry),
	}

	router := handler.NewRouter(deps)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// 期限切れセッションの掃除をバックグラウンドで定期実行
	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := sessionRepo.DeleteExpired(ctx)
				if err != nil {
					slog.Error("session cleanup failed", slog.String("error", err.Error()))
					continue
				}
				if deleted > 0 {
					slog.Info("expired sessions deleted", slog.Int64("count", deleted))
				}
			}
		}
	}()

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
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
