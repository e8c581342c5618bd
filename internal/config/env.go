package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Env struct {
	AppAddr string `mapstructure:"APP_ADDR"`
	GinMode string `mapstructure:"GIN_MODE"`
	Debug   bool   `mapstructure:"DEBUG"`

	SecretKey string `mapstructure:"SECRET_KEY"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBName     string `mapstructure:"DB_NAME"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	MediaRoot       string `mapstructure:"MEDIA_ROOT"`
	DocumentStorage string `mapstructure:"DOCUMENT_STORAGE"`
	S3Bucket        string `mapstructure:"S3_BUCKET"`
	S3Region        string `mapstructure:"S3_REGION"`

	NewBookingWebhookURL      string        `mapstructure:"N8N_NEW_BOOKING_WEBHOOK_URL"`
	PaymentReceiptWebhookURL  string        `mapstructure:"N8N_PAYMENT_RECEIPT_WEBHOOK_URL"`
	PaymentReminderWebhookURL string        `mapstructure:"N8N_PAYMENT_REMINDER_WEBHOOK_URL"`
	ReminderInterval          time.Duration `mapstructure:"REMINDER_INTERVAL"`
	ReminderCooldown          time.Duration `mapstructure:"REMINDER_COOLDOWN"`

	OpenRouterAPIKey       string `mapstructure:"OPENROUTER_API_KEY"`
	OpenRouterSiteURL      string `mapstructure:"OPENROUTER_SITE_URL"`
	AssistantRatePerMinute int    `mapstructure:"ASSISTANT_RATE_PER_MINUTE"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`
}

var keys = []string{
	"APP_ADDR", "GIN_MODE", "DEBUG", "SECRET_KEY",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"CORS_ALLOWED_ORIGINS", "MEDIA_ROOT", "DOCUMENT_STORAGE", "S3_BUCKET", "S3_REGION",
	"N8N_NEW_BOOKING_WEBHOOK_URL", "N8N_PAYMENT_RECEIPT_WEBHOOK_URL", "N8N_PAYMENT_REMINDER_WEBHOOK_URL",
	"REMINDER_INTERVAL", "REMINDER_COOLDOWN",
	"OPENROUTER_API_KEY", "OPENROUTER_SITE_URL", "ASSISTANT_RATE_PER_MINUTE",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
}

// LoadEnv reads .env (when present) and the process environment.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("DOCUMENT_STORAGE", "local")
	v.SetDefault("REMINDER_INTERVAL", "0s")
	v.SetDefault("REMINDER_COOLDOWN", "72h")
	v.SetDefault("OPENROUTER_SITE_URL", "http://127.0.0.1:8000")
	v.SetDefault("ASSISTANT_RATE_PER_MINUTE", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return Env{}, fmt.Errorf("decode config: %w", err)
	}
	env.DocumentStorage = strings.ToLower(strings.TrimSpace(env.DocumentStorage))
	return env, nil
}

// Validate reports settings the server cannot start without.
func (e Env) Validate() error {
	var missing []string
	if strings.TrimSpace(e.SecretKey) == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if strings.TrimSpace(e.DBName) == "" {
		missing = append(missing, "DB_NAME")
	}
	if strings.TrimSpace(e.DBUser) == "" {
		missing = append(missing, "DB_USER")
	}
	if len(missing) > 0 {
		return fmt.Errorf("set the %s environment variable(s) in your .env file", strings.Join(missing, ", "))
	}
	if e.DocumentStorage == "s3" && strings.TrimSpace(e.S3Bucket) == "" {
		return errors.New("DOCUMENT_STORAGE=s3 requires S3_BUCKET")
	}
	return nil
}

// DSN builds the MySQL data source name.
func (e Env) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser,
		e.DBPassword,
		e.DBHost,
		e.DBPort,
		e.DBName,
	)
}
