package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hugh/hr-manager/pkg/util"
	"github.com/spf13/viper"
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is not provided.
// There is deliberately no fallback secret.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cookie     CookieConfig
	Mail       MailConfig
	App        AppConfig
	Reset      ResetConfig
	Encryption EncryptionConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type AppConfig struct {
	FrontendURL    string
	AllowedOrigins []string
	CSRFEnabled    bool
}

type ResetConfig struct {
	TTLMinutes int
	SweepCron  string
}

type EncryptionConfig struct {
	Key string
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (m *MailConfig) Enabled() bool {
	return m.Host != "" && m.User != "" && m.Password != ""
}

func (r *ResetConfig) TTL() time.Duration {
	return time.Duration(r.TTLMinutes) * time.Minute
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 3000)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "admin")
	v.SetDefault("DATABASE_NAME", "hr_management")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("COOKIE_NAME", "access_token")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_FROM", "no-reply@hr-management.com")
	v.SetDefault("MAIL_FROM_NAME", "HR-Management")
	v.SetDefault("APP_FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("APP_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("APP_CSRF_ENABLED", false)
	v.SetDefault("RESET_TTL_MINUTES", 60)
	v.SetDefault("RESET_SWEEP_CRON", "0 0 * * *")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Cookie: CookieConfig{
			Name:   v.GetString("COOKIE_NAME"),
			Domain: v.GetString("COOKIE_DOMAIN"),
			Secure: v.GetBool("COOKIE_SECURE"),
		},
		Mail: MailConfig{
			Host:     v.GetString("MAIL_HOST"),
			Port:     v.GetInt("MAIL_PORT"),
			User:     v.GetString("MAIL_USER"),
			Password: v.GetString("MAIL_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
			FromName: v.GetString("MAIL_FROM_NAME"),
		},
		App: AppConfig{
			FrontendURL:    strings.TrimRight(v.GetString("APP_FRONTEND_URL"), "/"),
			AllowedOrigins: splitList(v.GetString("APP_ALLOWED_ORIGINS")),
			CSRFEnabled:    v.GetBool("APP_CSRF_ENABLED"),
		},
		Reset: ResetConfig{
			TTLMinutes: v.GetInt("RESET_TTL_MINUTES"),
			SweepCron:  v.GetString("RESET_SWEEP_CRON"),
		},
		Encryption: EncryptionConfig{
			Key: v.GetString("ENCRYPTION_KEY"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that have no safe default.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	if c.Reset.TTLMinutes <= 0 {
		return fmt.Errorf("RESET_TTL_MINUTES must be positive, got %d", c.Reset.TTLMinutes)
	}
	if err := util.ValidateCronExpr(c.Reset.SweepCron); err != nil {
		return fmt.Errorf("RESET_SWEEP_CRON: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
