package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/ems/internal/metrics"
	"github.com/hitoshi/ems/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	Authenticator      middleware.Authenticator
	CORSAllowedOrigins []string
	RateLimiter        *middleware.RateLimiter

	// メトリクス。Gathererがnilの場合は/metricsを公開しない。
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// サービス
	EmployeeService  EmployeeServiceInterface
	DepartmentStats  DepartmentStatsProvider
	DashboardService DashboardServiceInterface
	AuthService      AuthServiceInterface
	UserService      UserServiceInterface

	// ヘルスチェック時のDB疎通確認。nilの場合は確認しない。
	Pinger Pinger

	// 500エラーのレスポンスに内部エラーの詳細を含めるかどうか（開発モード）。
	ExposeErrorDetail bool
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Metrics → Recovery → SecurityHeaders → CORS
//
// 認証が必要なルートにはさらに Auth → RateLimit(General) → RateLimit(Write) を適用する。
// ログイン、ヘルスチェック、/metricsは認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	r := chi.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))
	r.NotFound(middleware.WriteNotFound)

	authHandler := NewAuthHandler(deps.AuthService, collector, deps.ExposeErrorDetail)
	employeeHandler := NewEmployeeHandler(deps.EmployeeService, deps.DepartmentStats, collector, deps.ExposeErrorDetail)
	dashboardHandler := NewDashboardHandler(deps.DashboardService, deps.ExposeErrorDetail)
	userHandler := NewUserHandler(deps.UserService, deps.ExposeErrorDetail)
	health := NewHealthHandler(deps.Pinger)

	// --- 認証不要のルート ---

	r.Get("/health", health)
	r.Get("/api/health", health)

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// ログインは未認証のためIP単位でレート制限する
	r.With(
		deps.RateLimiter.GeneralMiddleware(),
		deps.RateLimiter.WriteMiddleware(),
	).Post("/api/auth/login", authHandler.Login)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General) → RateLimit(Write)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(deps.RateLimiter.WriteMiddleware())

		r.Get("/api/auth/me", authHandler.Me)

		// 社員管理
		r.Route("/api/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.List)
			r.Post("/", employeeHandler.Create)

			// 静的パスは/{id}より優先してマッチする
			r.Get("/departments/stats", employeeHandler.DepartmentStats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", employeeHandler.Get)
				r.Put("/", employeeHandler.Update)
				r.Delete("/", employeeHandler.Delete)
			})
		})

		// ダッシュボード
		r.Route("/api/dashboard", func(r chi.Router) {
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/employees/chart", dashboardHandler.Chart)
			r.Get("/search", dashboardHandler.Search)
		})

		// ユーザー管理
		r.Post("/api/users", userHandler.Create)
	})

	return r
}
