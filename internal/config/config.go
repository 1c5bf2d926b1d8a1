package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSessionSecret = "dev-only-session-secret-change-me-please"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	AppEnv      string
	DBDriver    string
	DatabaseDSN string
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	SessionSecret       string
	SessionCookieName   string
	UseSecureCookies    bool
	AllowSelfRoleChange bool

	AI AIConfig

	ImportAllowedHost string

	RateLimitRPS   float64
	RateLimitBurst int
	MaxUploadSize  string

	PendingGaugeSchedule string

	LogLevel  string
	LogFormat string

	SwaggerHost string
}

// AIConfig configures the AI provider client.
type AIConfig struct {
	BaseURL        string
	ChatModel      string
	VisionModel    string
	OptimizeModel  string
	ImageModel     string
	Language       string
	RequestTimeout time.Duration
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseDSN: getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/rezepte?charset=utf8mb4&parseTime=True&loc=Local"),
		ResetDB:     getEnvBool("RESET_DB", false),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		SessionSecret:       getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "rezept-app-session"),
		UseSecureCookies:    getEnvBool("USE_SECURE_COOKIES", false),
		AllowSelfRoleChange: getEnvBool("ALLOW_SELF_ROLE_CHANGE", true),

		AI: AIConfig{
			BaseURL:        strings.TrimRight(getEnv("AI_BASE_URL", "https://api.openai.com/v1"), "/"),
			ChatModel:      getEnv("AI_CHAT_MODEL", "gpt-4o-mini"),
			VisionModel:    getEnv("AI_VISION_MODEL", "gpt-4o"),
			OptimizeModel:  getEnv("AI_OPTIMIZE_MODEL", "gpt-4o"),
			ImageModel:     getEnv("AI_IMAGE_MODEL", "dall-e-3"),
			Language:       getEnv("AI_LANGUAGE", "German"),
			RequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 0),
		},

		ImportAllowedHost: getEnv("IMPORT_ALLOWED_HOST", "chefkoch.de"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		MaxUploadSize:  getEnv("MAX_UPLOAD_SIZE", "10M"),

		PendingGaugeSchedule: getEnv("PENDING_GAUGE_SCHEDULE", "@every 1m"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.IsProduction() && c.SessionSecret == defaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SecureCookies reports whether the session cookie gets the Secure flag.
// It requires both production mode and an explicit opt-in.
func (c *Config) SecureCookies() bool {
	return c.IsProduction() && c.UseSecureCookies
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
