package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	GinMode         string
	ShutdownTimeout time.Duration
	FrontendURL     string

	DB   DBConfig
	JWT  JWTConfig
	Log  LogConfig
	Mail MailConfig
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
	LogLevel string
}

type JWTConfig struct {
	Secret               string
	Issuer               string
	AccessTTL            time.Duration
	PasswordResetTTL     time.Duration
	EmailVerificationTTL time.Duration
}

type LogConfig struct {
	Level    string
	Encoding string
}

type MailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
}

// Load reads configuration from the environment, after loading a .env file if
// one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "timewise")
	v.SetDefault("DB_PASSWORD", "timewise")
	v.SetDefault("DB_NAME", "timewise")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "timewise.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "timewise-api")
	v.SetDefault("JWT_ACCESS_TTL", "0s")
	v.SetDefault("PASSWORD_RESET_TTL", "15m")
	v.SetDefault("EMAIL_VERIFICATION_TTL", "1h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "no-reply@timewise.local")

	cfg := &Config{
		AppEnv:          v.GetString("APP_ENV"),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		GinMode:         v.GetString("GIN_MODE"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		FrontendURL:     strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		DB: DBConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			Path:     v.GetString("DB_PATH"),
			LogLevel: v.GetString("DB_LOG_LEVEL"),
		},
		JWT: JWTConfig{
			Secret:               v.GetString("JWT_SECRET"),
			Issuer:               v.GetString("JWT_ISSUER"),
			AccessTTL:            v.GetDuration("JWT_ACCESS_TTL"),
			PasswordResetTTL:     v.GetDuration("PASSWORD_RESET_TTL"),
			EmailVerificationTTL: v.GetDuration("EMAIL_VERIFICATION_TTL"),
		},
		Log: LogConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Encoding: v.GetString("LOG_ENCODING"),
		},
		Mail: MailConfig{
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			From:         v.GetString("MAIL_FROM"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.JWT.AccessTTL < 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must not be negative")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.GinMode == "release"
}
