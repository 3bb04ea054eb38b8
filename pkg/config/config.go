package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig

	Alerts     AlertsConfig
	Completion CompletionConfig
	Widget     WidgetConfig
	Mail       MailConfig
	Worker     WorkerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AlertsConfig governs the expiry-warning email feature.
type AlertsConfig struct {
	Enabled     bool
	DaysToAlert int `validate:"min=1"`
	Subject     string
	Body        string
}

// CompletionConfig governs the course-completion email feature.
type CompletionConfig struct {
	Enabled   bool
	Threshold float64 `validate:"min=0,max=100"`
	Subject   string
	Body      string
}

// WidgetConfig tunes the countdown widget render path.
type WidgetConfig struct {
	Enabled        bool
	ActiveUnits    string
	ForceTwoDigits bool
	WarningDays    int `validate:"min=0"`
	DangerDays     int `validate:"min=0"`
	CacheTTL       time.Duration
}

// MailConfig selects and configures the notification transport.
type MailConfig struct {
	Provider    string `validate:"oneof=console sendgrid"`
	SendgridKey string
	FromName    string
	FromAddress string `validate:"required,email"`
	SiteName    string
	SiteURL     string `validate:"required,url"`
}

// WorkerConfig drives the periodic timer task.
type WorkerConfig struct {
	Cron string `validate:"required"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Alerts = AlertsConfig{
		Enabled:     v.GetBool("ALERTS_ENABLED"),
		DaysToAlert: v.GetInt("ALERTS_DAYS_TO_ALERT"),
		Subject:     v.GetString("ALERTS_EMAIL_SUBJECT"),
		Body:        v.GetString("ALERTS_EMAIL_BODY"),
	}

	cfg.Completion = CompletionConfig{
		Enabled:   v.GetBool("COMPLETION_ENABLED"),
		Threshold: v.GetFloat64("COMPLETION_THRESHOLD"),
		Subject:   v.GetString("COMPLETION_EMAIL_SUBJECT"),
		Body:      v.GetString("COMPLETION_EMAIL_BODY"),
	}

	cfg.Widget = WidgetConfig{
		Enabled:        v.GetBool("WIDGET_ENABLED"),
		ActiveUnits:    v.GetString("WIDGET_ACTIVE_UNITS"),
		ForceTwoDigits: v.GetBool("WIDGET_FORCE_TWO_DIGITS"),
		WarningDays:    v.GetInt("WIDGET_WARNING_DAYS"),
		DangerDays:     v.GetInt("WIDGET_DANGER_DAYS"),
		CacheTTL:       parseDuration(v.GetString("WIDGET_CACHE_TTL"), time.Minute),
	}

	cfg.Mail = MailConfig{
		Provider:    v.GetString("MAIL_PROVIDER"),
		SendgridKey: v.GetString("SENDGRID_API_KEY"),
		FromName:    v.GetString("MAIL_FROM_NAME"),
		FromAddress: v.GetString("MAIL_FROM_ADDRESS"),
		SiteName:    v.GetString("SITE_NAME"),
		SiteURL:     v.GetString("SITE_URL"),
	}

	cfg.Worker = WorkerConfig{Cron: v.GetString("WORKER_CRON")}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "enroltimer")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ALERTS_ENABLED", true)
	v.SetDefault("ALERTS_DAYS_TO_ALERT", 7)
	v.SetDefault("ALERTS_EMAIL_SUBJECT", "")
	v.SetDefault("ALERTS_EMAIL_BODY", "")

	v.SetDefault("COMPLETION_ENABLED", true)
	v.SetDefault("COMPLETION_THRESHOLD", 100)
	v.SetDefault("COMPLETION_EMAIL_SUBJECT", "")
	v.SetDefault("COMPLETION_EMAIL_BODY", "")

	v.SetDefault("WIDGET_ENABLED", true)
	v.SetDefault("WIDGET_ACTIVE_UNITS", "")
	v.SetDefault("WIDGET_FORCE_TWO_DIGITS", false)
	v.SetDefault("WIDGET_WARNING_DAYS", 14)
	v.SetDefault("WIDGET_DANGER_DAYS", 3)
	v.SetDefault("WIDGET_CACHE_TTL", "1m")

	v.SetDefault("MAIL_PROVIDER", "console")
	v.SetDefault("MAIL_FROM_NAME", "Course Support")
	v.SetDefault("MAIL_FROM_ADDRESS", "support@example.com")
	v.SetDefault("SITE_NAME", "Enrolment Timer")
	v.SetDefault("SITE_URL", "http://localhost:8080")

	v.SetDefault("WORKER_CRON", "*/15 * * * *")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
