// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSessionSecret はローカル開発用のセッション署名鍵です。本番では使用できません。
const DevSessionSecret = "dev-only-session-secret-change-me"

const minReleaseSecretLength = 32

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// セッション設定
	SessionSecret      string // セッションクッキー署名用の秘密鍵
	SessionMaxAgeMin   int    // セッションの最大寿命（分）
	SessionIdleMinutes int    // 無操作でセッションを破棄するまでの時間（分）

	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// データストア設定
	DatabaseDSN string // MySQL接続文字列（ユーザー・問い合わせの保存先）
	RedisURL    string // セッションと通知キュー用のRedis接続URL

	// 通知ワーカー設定
	NotifyConcurrency int // 問い合わせ通知ワーカーの並列数
}

// Load は環境変数から設定を読み込みます。
// .env.local または .env ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionMaxAgeMin:   getEnvAsInt("SESSION_MAX_AGE_MINUTES", 12*60),
		SessionIdleMinutes: getEnvAsInt("SESSION_IDLE_MINUTES", 30),

		// PORT が未設定または空文字の場合は 8000
		Port:    getEnv("PORT", "8000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8000"),

		DatabaseDSN: getEnv("DATABASE_DSN", "root:root@tcp(127.0.0.1:3306)/gymdb?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisURL:    getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		NotifyConcurrency: getEnvAsInt("NOTIFY_CONCURRENCY", 2),
	}

	// 開発モードでは署名鍵が無くても起動できるようにする
	if config.SessionSecret == "" && config.GinMode != "release" {
		config.SessionSecret = DevSessionSecret
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err == nil {
			return
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.SessionMaxAgeMin <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE_MINUTES must be positive")
	}
	if c.SessionIdleMinutes <= 0 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive")
	}

	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.SessionSecret == DevSessionSecret {
			return fmt.Errorf("SESSION_SECRET must not be the development default in release mode")
		}
		if len(c.SessionSecret) < minReleaseSecretLength {
			return fmt.Errorf("SESSION_SECRET must be at least %d characters in release mode", minReleaseSecretLength)
		}
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required in release mode")
		}
	}

	return nil
}

// SessionMaxAge はセッションの最大寿命を返します。
func (c *Config) SessionMaxAge() time.Duration {
	return time.Duration(c.SessionMaxAgeMin) * time.Minute
}

// SessionIdleTimeout は無操作タイムアウトを返します。
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// AllowedOrigins はカンマ区切りの許可オリジンを配列にして返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsRelease は本番モードかどうかを返します。
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
