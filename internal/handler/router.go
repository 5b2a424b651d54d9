package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/campushub/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	RequestRecorder   middleware.RequestRecorder
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string

	// サービス
	AuthService        Authenticator
	TokenIssuer        TokenIssuer
	LoginRecorder      LoginRecorder
	NewsService        NewsServiceInterface
	EventService       EventServiceInterface
	OpportunityService OpportunityServiceInterface
	JobPostingService  JobPostingServiceInterface
	TagService         TagServiceInterface
	CategoryService    CategoryServiceInterface
	InfoService        InfoServiceInterface

	// 管理コンソール（セッション認証はWeb側で構成済み）
	Web http.Handler

	// Prometheusスクレイプ用ハンドラー
	Metrics http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → Metrics → CORS
//
// 書き込み系APIルートにはさらに TokenAuth → AdminOnly が積まれる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.RequestRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.RequestRecorder))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.TokenIssuer, deps.LoginRecorder)
	newsHandler := NewNewsHandler(deps.NewsService)
	eventHandler := NewEventHandler(deps.EventService)
	opportunityHandler := NewOpportunityHandler(deps.OpportunityService)
	jobHandler := NewJobPostingHandler(deps.JobPostingService)
	tagHandler := NewTagHandler(deps.TagService)
	categoryHandler := NewCategoryHandler(deps.CategoryService)
	infoHandler := NewInfoHandler(deps.InfoService)

	tokenAuth := middleware.NewTokenAuth(deps.TokenVerifier)
	adminOnly := middleware.NewAdminOnly()

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 認証
		if deps.RateLimiter != nil {
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/auth/login", authHandler.Login)
		} else {
			r.Post("/auth/login", authHandler.Login)
		}
		r.With(tokenAuth).Get("/auth/verify", authHandler.Verify)

		// --- 公開の読み取りルート ---
		r.Get("/news", newsHandler.List)
		r.Get("/news/{id}", newsHandler.Get)
		r.Get("/events", eventHandler.List)
		r.Get("/events/{id}", eventHandler.Get)
		r.Get("/opportunities", opportunityHandler.List)
		r.Get("/opportunities/{id}", opportunityHandler.Get)
		r.Get("/opportunity-types", opportunityHandler.ListTypes)
		r.Get("/jobs", jobHandler.List)
		r.Get("/jobs/{id}", jobHandler.Get)
		r.Get("/tags", tagHandler.List)
		r.Get("/job-categories", categoryHandler.List)
		r.Get("/job-categories/{id}", categoryHandler.Get)
		r.Get("/info", infoHandler.List)
		r.Get("/info/{key}", infoHandler.Get)

		// --- 管理者のみの書き込みルート ---
		r.Group(func(r chi.Router) {
			r.Use(tokenAuth)
			r.Use(adminOnly)

			r.Post("/news", newsHandler.Create)
			r.Put("/news/{id}", newsHandler.Update)
			r.Delete("/news/{id}", newsHandler.Delete)

			r.Post("/events", eventHandler.Create)
			r.Put("/events/{id}", eventHandler.Update)
			r.Delete("/events/{id}", eventHandler.Delete)

			r.Post("/opportunities", opportunityHandler.Create)
			r.Put("/opportunities/{id}", opportunityHandler.Update)
			r.Delete("/opportunities/{id}", opportunityHandler.Delete)
			r.Post("/opportunity-types", opportunityHandler.CreateType)

			r.Post("/jobs", jobHandler.Create)
			r.Put("/jobs/{id}", jobHandler.Update)
			r.Delete("/jobs/{id}", jobHandler.Delete)

			r.Post("/tags", tagHandler.Create)

			r.Post("/job-categories", categoryHandler.Create)
			r.Put("/job-categories/{id}", categoryHandler.Update)
			r.Delete("/job-categories/{id}", categoryHandler.Delete)

			r.Put("/info/{key}", infoHandler.Upsert)
			r.Delete("/info/{key}", infoHandler.Delete)
		})
	})

	// 管理コンソール
	if deps.Web != nil {
		r.Mount("/web", deps.Web)
	}

	// 運用エンドポイント
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	return r
}
