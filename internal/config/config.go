// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DevSessionSecret は release モード以外で SESSION_SECRET 未設定時に使う署名鍵です。
const DevSessionSecret = "bookshelf-dev-session-secret"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// 認証設定
	SessionSecret   string // クッキー署名とトークン署名の元になる秘密鍵
	TokenTTLMinutes int    // ログイントークンの有効期限（分）

	// サーバー設定
	Port     string // APIサーバーのポート番号
	GinMode  string // Ginの実行モード (debug, release, test)
	LogLevel string // zerolog のログレベル

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// カタログ設定
	CatalogFile      string // 書籍データの JSON ファイル（空なら埋め込みデータ）
	CatalogLatencyMS int    // カタログ参照に挟む疑似遅延（ミリ秒）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		SessionSecret:   getEnv("SESSION_SECRET", ""),
		TokenTTLMinutes: getEnvAsInt("TOKEN_TTL_MINUTES", 60),

		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		CatalogFile:      getEnv("CATALOG_FILE", ""),
		CatalogLatencyMS: getEnvAsInt("CATALOG_LATENCY_MS", 0),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// ローカル開発では秘密鍵は任意
	if config.SessionSecret == "" {
		config.SessionSecret = DevSessionSecret
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
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
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", c.TokenTTLMinutes)
	}
	if c.CatalogLatencyMS < 0 {
		return fmt.Errorf("CATALOG_LATENCY_MS must not be negative, got %d", c.CatalogLatencyMS)
	}
	if c.GinMode == "release" && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in release mode")
	}
	return nil
}

// TokenTTL はトークンの有効期間を返します。
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// CatalogLatency はカタログ参照の疑似遅延を返します。
func (c *Config) CatalogLatency() time.Duration {
	return time.Duration(c.CatalogLatencyMS) * time.Millisecond
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
