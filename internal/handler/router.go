package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kenta/memoya/internal/metrics"
	"github.com/kenta/memoya/internal/middleware"
	"github.com/kenta/memoya/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	Accessor    SessionAccessorInterface
	AuthConfig  AuthHandlerConfig

	// ノート
	NotesClient NotesClientInterface
	Sanitizer   security.ContentSanitizerService

	// アバター
	AvatarFetcher AvatarFetcherInterface

	// メトリクス（nilの場合は/metricsを公開しない）
	MetricsGatherer prometheus.Gatherer

	// リクエストログ用ロガー（nilの場合はslog.Default()）
	Logger *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → (Session → CSRF → RateLimit)
//
// 認証ルート（/auth/*）とヘルスチェックはセッションミドルウェアの外に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.Accessor, deps.AuthConfig)
	noteHandler := NewNoteHandler(deps.NotesClient, deps.Accessor, deps.Sanitizer)
	avatarHandler := NewAvatarHandler(deps.AvatarFetcher, deps.Accessor)

	// --- 認証不要のルート ---

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// CSRFトークン取得（セッション不要、Cookie設定のため）
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ノート管理
		r.Route("/api/notes", func(r chi.Router) {
			r.Get("/", noteHandler.ListNotes)
			// 書き込みには専用のレート制限を追加
			r.With(deps.RateLimiter.NoteWriteMiddleware()).Post("/", noteHandler.CreateNote)

			r.Route("/{id}", func(r chi.Router) {
				r.With(deps.RateLimiter.NoteWriteMiddleware()).Put("/", noteHandler.UpdateNote)
				r.With(deps.RateLimiter.NoteWriteMiddleware()).Delete("/", noteHandler.DeleteNote)
			})
		})

		// アバター配信
		r.Get("/api/avatar", avatarHandler.GetAvatar)
	})

	return r
}
