package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"campuscafe-reports/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr    string
	Environment string
	CORSOrigins []string

	// PostgreSQL
	Database DatabaseConfig

	// Redis (rate limiting); empty address disables it
	RedisAddr string
	RedisPass string
	RateLimit RateLimitConfig

	// JWT; empty public key path disables auth
	JWT jwt.Config
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int32
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

type RateLimitConfig struct {
	Requests int64
	Window   time.Duration
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		Environment: getEnv("APP_ENV", "production"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       int32(getEnvInt("DB_MAX_CONNS", 20)),
			IdleTimeout:    getEnvDuration("DB_IDLE_TIMEOUT", 30*time.Second),
			ConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 2*time.Second),
			QueryTimeout:   getEnvDuration("DB_QUERY_TIMEOUT", 10*time.Second),
		},

		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASS", ""),
		RateLimit: RateLimitConfig{
			Requests: int64(getEnvInt("RATE_LIMIT_REQUESTS", 120)),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", ""),
			Issuer:   getEnv("JWT_ISSUER", "campuscafe"),
			Audience: getEnv("JWT_AUDIENCE", "campuscafe-dashboard"),
			TTL:      getEnvDuration("JWT_TTL", 720*time.Hour),
			KID:      getEnv("JWT_KID", "campuscafe-key"),
		},
	}
}

// Validate reports every missing or out-of-range setting at once.
func (c AppConfig) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Database.URL) == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.Database.MaxConns < 1 {
		problems = append(problems, "DB_MAX_CONNS must be at least 1")
	}
	if c.RedisAddr != "" && (c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0) {
		problems = append(problems, "RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
	}
	return nil
}

func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func (c AppConfig) AuthEnabled() bool {
	return c.JWT.PubPath != ""
}

func (c AppConfig) RateLimitEnabled() bool {
	return c.RedisAddr != ""
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
