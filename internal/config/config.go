package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// 外部コラボレータのベースURL。
	// 未設定のコラボレータはローカルフォールバック実装に置き換わる
	// （Summarizer: ページタイトル抽出、Slugger: 決定的スラグ生成）。
	// ClassifierURLが未設定の場合、自動分類は常にResourcesにフォールバックする。
	ClassifierURL string
	SummarizerURL string
	SluggerURL    string
	DecomposerURL string

	// Assist（コラボレータ呼び出し）
	AssistTimeout time.Duration
	FetchMaxSize  int64

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitAssist  int

	// アーカイブポリシー
	// AutoArchiveが真の場合、workerモードで全項目完了プロジェクトを
	// 定期的にアーカイブ遷移させるスイーパーが起動する。
	// 偽の場合、アーカイブ遷移は明示的なAPI操作でのみ発生する。
	AutoArchive         bool
	AutoArchiveInterval time.Duration

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ClassifierURL = getEnvString("CLASSIFIER_URL", "")
	cfg.SummarizerURL = getEnvString("SUMMARIZER_URL", "")
	cfg.SluggerURL = getEnvString("SLUGGER_URL", "")
	cfg.DecomposerURL = getEnvString("DECOMPOSER_URL", "")
	cfg.AssistTimeout = getEnvDuration("ASSIST_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAssist = getEnvInt("RATE_LIMIT_ASSIST", 20)
	cfg.AutoArchive = getEnvBool("AUTO_ARCHIVE", false)
	cfg.AutoArchiveInterval = getEnvDuration("AUTO_ARCHIVE_INTERVAL", 10*time.Minute)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

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

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
