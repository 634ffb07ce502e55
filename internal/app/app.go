// Package app はアプリケーションの初期化、依存関係のワイヤリング、サブコマンドの実行を提供する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/ems/internal/auth"
	"github.com/hitoshi/ems/internal/config"
	"github.com/hitoshi/ems/internal/dashboard"
	"github.com/hitoshi/ems/internal/database"
	"github.com/hitoshi/ems/internal/employee"
	"github.com/hitoshi/ems/internal/handler"
	"github.com/hitoshi/ems/internal/logger"
	"github.com/hitoshi/ems/internal/metrics"
	"github.com/hitoshi/ems/internal/middleware"
	"github.com/hitoshi/ems/internal/repository"
	"github.com/hitoshi/ems/internal/security"
	"github.com/hitoshi/ems/internal/seed"
	"github.com/hitoshi/ems/internal/user"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
// LOG_FILEが設定されている場合はローテーション付きファイルにも書き込み、そのCloserを返す。
func Init(w io.Writer) (*config.Config, io.Closer, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. ファイル出力の追加
	out, closer := logger.Tee(w, cfg.LogFile, cfg.LogRetentionDays)
	if closer != nil {
		logger.SetupDefault(out)
	}

	return cfg, closer, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// withConfig は初期化を行ってからfnを実行する。
func withConfig(w io.Writer, command string, fn func(cfg *config.Config) error) error {
	cfg, closer, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	slog.Info("starting application",
		slog.String("command", command),
		slog.String("port", cfg.ServerPort),
		slog.String("env", cfg.AppEnv),
	)
	return fn(cfg)
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established")
	return db, nil
}

// services はドメインサービス一式。
type services struct {
	users     repository.UserRepository
	employees repository.EmployeeRepository

	auth      *auth.Service
	user      *user.Service
	employee  *employee.Service
	dashboard *dashboard.Service
}

// newServices はリポジトリとドメインサービスを初期化する。
func newServices(cfg *config.Config, db *sql.DB) *services {
	userRepo := repository.NewPostgresUserRepo(db)
	employeeRepo := repository.NewPostgresEmployeeRepo(db)
	statsRepo := repository.NewPostgresStatsRepo(db)

	return &services{
		users:     userRepo,
		employees: employeeRepo,
		auth:      auth.NewService(userRepo, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)),
		user:      user.NewService(userRepo, cfg.BcryptCost),
		employee: employee.NewService(
			employeeRepo, userRepo,
			employee.NewValidator(),
			security.NewTextSanitizer(),
		),
		dashboard: dashboard.NewService(statsRepo, employeeRepo, userRepo),
	}
}

// NewAPIHandler は全依存関係をワイヤリングしたHTTPハンドラーを返す。
// 返り値のstopはレートリミッターのバックグラウンド処理を停止する。
func NewAPIHandler(cfg *config.Config, db *sql.DB, reg *prometheus.Registry) (http.Handler, func()) {
	svc := newServices(cfg, db)
	collector := metrics.NewCollector(reg)

	rl := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitWrite),
		collector,
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:             slog.Default(),
		Authenticator:      svc.auth,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        rl,

		Metrics:         collector,
		MetricsGatherer: reg,

		EmployeeService:  handler.NewEmployeeServiceAdapter(svc.employee),
		DepartmentStats:  svc.dashboard,
		DashboardService: handler.NewDashboardServiceAdapter(svc.dashboard),
		AuthService:      handler.NewAuthServiceAdapter(svc.auth, svc.employee),
		UserService:      handler.NewUserServiceAdapter(svc.user),

		Pinger:            db,
		ExposeErrorDetail: cfg.IsDevelopment(),
	})

	return router, rl.Stop
}

// newRegistry はGoランタイムとプロセスのメトリクスを登録したレジストリを返す。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINT、SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	router, stopLimiter := NewAPIHandler(cfg, db, newRegistry())
	defer stopLimiter()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

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

// seedOptions はseedサブコマンドのフラグ。
type seedOptions struct {
	reset bool
	demo  bool
}

// runSeed はサンプルデータを投入する。
// resetが指定された場合は投入前に社員とユーザーを全削除する。
func runSeed(ctx context.Context, cfg *config.Config, opts seedOptions) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if opts.reset {
		if err := seed.Reset(ctx, db); err != nil {
			return err
		}
	}

	svc := newServices(cfg, db)
	seeder := seed.NewSeeder(svc.users, svc.employees, svc.user, svc.employee)
	if _, err := seeder.Run(ctx, seed.Options{Demo: opts.demo}); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// healthcheckPort はヘルスチェック先のポートを返す。
// 設定全体を読み込まずにSERVER_PORTだけを参照する。
func healthcheckPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return "8080"
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
