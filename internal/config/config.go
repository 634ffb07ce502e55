package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvDevelopment は開発モードを表すAPP_ENVの値。
const EnvDevelopment = "development"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Auth
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL     time.Duration `env:"JWT_TTL" envDefault:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	// Rate Limit（req/min/user）
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitWrite   int `env:"RATE_LIMIT_WRITE" envDefault:"30"`

	// Logging
	LogFile          string `env:"LOG_FILE"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"14"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	AppEnv     string `env:"APP_ENV" envDefault:"production"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// IsDevelopment は開発モードかどうかを返す。
// 開発モードでは500レスポンスに内部エラーの詳細を含める。
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// defaultEnvFiles は起動時に読み込みを試みるdotenvファイル。
// 存在しないファイルは無視する。既に設定済みの環境変数は上書きしない。
var defaultEnvFiles = []string{"config.env", ".env"}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := loadEnvFiles(defaultEnvFiles); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.RateLimitGeneral <= 0 || cfg.RateLimitWrite <= 0 {
		return nil, fmt.Errorf("rate limits must be positive: general=%d write=%d", cfg.RateLimitGeneral, cfg.RateLimitWrite)
	}

	return cfg, nil
}

// loadEnvFiles は存在するdotenvファイルのみを読み込む。
func loadEnvFiles(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files %v: %w", existing, err)
	}
	return nil
}
