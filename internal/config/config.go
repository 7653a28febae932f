package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configはアプリ全体の設定（環境変数 / .env）
type Config struct {
	Port string `mapstructure:"port"` // サーバーポート（8080）

	DatabaseURL      string `mapstructure:"database_url"` // あれば最優先
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDB       string `mapstructure:"postgres_db"`
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`
	AutoMigrate      bool   `mapstructure:"auto_migrate"`

	JWTSecret string `mapstructure:"jwt_secret"` // JWT署名シークレット
	AdminRole string `mapstructure:"admin_role"` // 所有チェックを飛ばせるロール

	GoEnv    string `mapstructure:"go_env"` // dev/prod
	FEURL    string `mapstructure:"fe_url"` // フロントURL（CORS, websocketのOrigin）
	LogLevel string `mapstructure:"log_level"`

	SMTPHost     string `mapstructure:"smtp_host"` // 空ならメール送信しない
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPFrom     string `mapstructure:"smtp_from"`
	MailWorkers  int    `mapstructure:"mail_workers"`

	RedisAddr     string `mapstructure:"redis_addr"` // 空ならこのプロセス内だけでpush
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisChannel  string `mapstructure:"redis_channel"`

	CompanyName    string `mapstructure:"company_name"` // 請求書の販売元
	CompanyAddress string `mapstructure:"company_address"`
	CompanyEmail   string `mapstructure:"company_email"`
}

var defaults = map[string]any{
	"port":              "8080",
	"database_url":      "",
	"postgres_user":     "postgres",
	"postgres_password": "postgres",
	"postgres_db":       "marketplace",
	"postgres_host":     "localhost",
	"postgres_port":     5432,
	"postgres_sslmode":  "disable",
	"auto_migrate":      true,
	"jwt_secret":        "",
	"admin_role":        "ADMIN",
	"go_env":            "dev",
	"fe_url":            "*",
	"log_level":         "info",
	"smtp_host":         "",
	"smtp_port":         587,
	"smtp_user":         "",
	"smtp_password":     "",
	"smtp_from":         "no-reply@marketplace.local",
	"mail_workers":      2,
	"redis_addr":        "",
	"redis_password":    "",
	"redis_db":          0,
	"redis_channel":     "marketplace:events",
	"company_name":      "Marketplace",
	"company_address":   "",
	"company_email":     "",
}

// Loadは.envを読み込んでから環境変数で上書きする
func Load() (Config, error) {
	//.envは無くてもよい
	_ = godotenv.Load()

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.SMTPHost != "" && cfg.SMTPPort <= 0 {
		return Config{}, fmt.Errorf("SMTP_PORT must be positive")
	}

	return cfg, nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod" || c.GoEnv == "production"
}

// DSN はDATABASE_URLか、POSTGRES_*から組み立てた接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}
