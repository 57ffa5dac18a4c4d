package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/paraman/internal/metrics"
	"github.com/hitoshi/paraman/internal/middleware"
)

// HealthPinger はヘルスチェックで疎通確認する依存のインターフェース。
// *sql.DBがこれを満たす。
type HealthPinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusObserver    middleware.StatusObserver

	// サービス
	EntryService   EntryServiceInterface
	ProjectService ProjectServiceInterface

	// 運用
	HealthPinger HealthPinger        // nilの場合は疎通確認なしで200を返す
	Gatherer     prometheus.Gatherer // nilの場合は/metricsを公開しない
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Recovery → RateLimit(General)
//
// コラボレータ呼び出しを伴う操作（エントリ作成・プロジェクト作成・分解）には
// 専用のレート制限を追加で適用する。
// /healthz と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusObserver))
	r.Use(middleware.NewRecoveryMiddleware())

	entryHandler := NewEntryHandler(deps.EntryService)
	projectHandler := NewProjectHandler(deps.ProjectService)

	// --- 運用ルート（レート制限の外） ---

	r.Get("/healthz", healthzHandler(deps.HealthPinger))

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- APIルート ---

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// エントリ管理
		r.Route("/api/entries", func(r chi.Router) {
			// POST /api/entries - 分類コラボレータを呼ぶため専用レート制限を追加
			r.With(deps.RateLimiter.AssistMiddleware()).Post("/", entryHandler.AddEntry)
			r.Get("/", entryHandler.ListEntries)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", entryHandler.GetEntry)
				r.Put("/completed", entryHandler.SetCompleted)
				r.Put("/pin", entryHandler.SetPinned)
				r.Delete("/", entryHandler.DeleteEntry)
			})
		})

		// プロジェクト管理
		r.Route("/api/projects", func(r chi.Router) {
			// POST /api/projects - スラグ生成コラボレータを呼ぶため専用レート制限を追加
			r.With(deps.RateLimiter.AssistMiddleware()).Post("/", projectHandler.CreateProject)
			r.Get("/", projectHandler.ListProjects)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)
				r.Patch("/", projectHandler.UpdateProject)
				r.Delete("/", projectHandler.DeleteProject)

				r.Post("/items", projectHandler.AddProjectItem)
				r.Route("/items/{itemID}", func(r chi.Router) {
					r.Put("/", projectHandler.UpdateProjectItem)
					r.Delete("/", projectHandler.RemoveProjectItem)
				})

				// POST /api/projects/:id/breakdown - 分解コラボレータを呼ぶため専用レート制限を追加
				r.With(deps.RateLimiter.AssistMiddleware()).Post("/breakdown", projectHandler.BreakdownProject)
				r.Post("/archive", projectHandler.ArchiveProject)
			})
		})
	})

	return r
}

// healthzHandler はヘルスチェックのハンドラーを返す。
// GET /healthz
func healthzHandler(pinger HealthPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.PingContext(r.Context()); err != nil {
				writeHealthResponse(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		writeHealthResponse(w, http.StatusOK, "ok")
	}
}

// writeHealthResponse はヘルスチェックのJSONレスポンスを書き込む。
func writeHealthResponse(w http.ResponseWriter, statusCode int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
