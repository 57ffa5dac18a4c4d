// Package app はアプリケーションの初期化・起動・依存関係のワイヤリングを行う。
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

	"github.com/hitoshi/paraman/internal/assist"
	"github.com/hitoshi/paraman/internal/config"
	"github.com/hitoshi/paraman/internal/database"
	"github.com/hitoshi/paraman/internal/entry"
	"github.com/hitoshi/paraman/internal/handler"
	"github.com/hitoshi/paraman/internal/link"
	"github.com/hitoshi/paraman/internal/logger"
	"github.com/hitoshi/paraman/internal/metrics"
	"github.com/hitoshi/paraman/internal/middleware"
	"github.com/hitoshi/paraman/internal/project"
	"github.com/hitoshi/paraman/internal/repository"
	"github.com/hitoshi/paraman/internal/security"
	archivepkg "github.com/hitoshi/paraman/internal/worker/archive"
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
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
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

	// 2. リポジトリの初期化
	entryRepo := repository.NewPostgresEntryRepo(db)
	projectRepo := repository.NewPostgresProjectRepo(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewTitleSanitizer()

	// 5. 外部コラボレータの初期化
	// URLが未設定のコラボレータはローカルフォールバック実装に置き換わる。
	assistClient := assist.NewHTTPClient(cfg.AssistTimeout, collector)

	var summarizer link.TitleSummarizer
	if cfg.SummarizerURL != "" {
		summarizer = assist.NewSummarizer(assistClient, slog.Default(), cfg.SummarizerURL)
	} else {
		summarizer = assist.NewPageTitleSummarizer(ssrfGuard, slog.Default(), cfg.AssistTimeout, cfg.FetchMaxSize)
	}

	localSlugger := assist.NewLocalSlugger()
	var slugger link.SlugGenerator = localSlugger
	if cfg.SluggerURL != "" {
		slugger = assist.NewSlugger(assistClient, slog.Default(), cfg.SluggerURL)
	}

	var classifier entry.Classifier = assist.NewUnconfiguredClassifier()
	if cfg.ClassifierURL != "" {
		classifier = assist.NewClassifier(assistClient, slog.Default(), cfg.ClassifierURL)
	}

	var decomposer project.Decomposer = assist.NewUnconfiguredDecomposer()
	if cfg.DecomposerURL != "" {
		decomposer = assist.NewDecomposer(assistClient, slog.Default(), cfg.DecomposerURL)
	}

	// 6. ドメインサービスの初期化
	resolver := link.NewResolver(summarizer, slugger, sanitizer, slog.Default())
	engine := entry.NewCategorizationEngine(resolver, classifier, collector, slog.Default())
	entryService := entry.NewService(entryRepo, engine, collector, slog.Default())
	projectService := project.NewService(
		projectRepo, entryRepo, slugger, localSlugger, decomposer, collector, slog.Default(),
	)

	// 7. レート制限の初期化（configはreq/min単位、rate.Limitはreq/sec単位）
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(cfg.RateLimitGeneral) / 60.0),
		GeneralBurst:    cfg.RateLimitGeneral,
		AssistRate:      rate.Limit(float64(cfg.RateLimitAssist) / 60.0),
		AssistBurst:     cfg.RateLimitAssist,
		CleanupInterval: 5 * time.Minute,
	})
	defer rateLimiter.Stop()

	// 8. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		StatusObserver:    collector,

		EntryService:   entryService,
		ProjectService: projectService,

		HealthPinger: db,
		Gatherer:     registry,
	})

	// 9. HTTPサーバーの起動
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

// runWorker はワーカーモードで起動する。
// AUTO_ARCHIVEが有効な場合、全サブタスク完了済みプロジェクトを定期的に
// アーカイブ遷移させるスイーパーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	if !cfg.AutoArchive {
		slog.Info("auto archive is disabled, worker has nothing to do")
		return nil
	}

	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. リポジトリとメトリクスの初期化
	entryRepo := repository.NewPostgresEntryRepo(db)
	projectRepo := repository.NewPostgresProjectRepo(db)
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. アーカイブ遷移を実行するプロジェクトサービスの初期化。
	// スイーパーはArchiveのみを呼ぶため、コラボレータはローカル実装で足りる。
	localSlugger := assist.NewLocalSlugger()
	projectService := project.NewService(
		projectRepo, entryRepo,
		localSlugger, localSlugger,
		assist.NewUnconfiguredDecomposer(),
		collector, slog.Default(),
	)

	// 4. スイーパーの起動
	sweeper := archivepkg.NewSweeper(projectRepo, projectService, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("sweep_interval", cfg.AutoArchiveInterval),
	)

	// スイーパーをメインgoroutineで実行（ブロッキング）
	sweeper.Start(ctx, cfg.AutoArchiveInterval)

	slog.Info("worker stopped gracefully")
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
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
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
