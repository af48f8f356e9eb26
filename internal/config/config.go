package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	Port        string
	PublicURL   string // Base URL of this API, used for OAuth callbacks
	FrontendURL string // CORS origin and target of the GitHub callback redirect

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret       string
	RateLimitAuth   int
	RateLimitWindow time.Duration
	TrustProxy      bool // Honor X-Forwarded-For / X-Real-IP when identifying clients

	// OAuth
	GoogleClientID     string
	GitHubClientID     string
	GitHubClientSecret string

	// Content providers (optional)
	GNewsAPIKey       string
	OpenWeatherAPIKey string

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	port := envString("PORT", "8000")

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "NewsTech"),
		AppEnv:      envString("APP_ENV", "development"),
		Port:        port,
		PublicURL:   envString("PUBLIC_URL", "http://localhost:"+port),
		FrontendURL: envString("FRONTEND_URL", "http://localhost:5174"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/newstech.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security (the server refuses to start without a signing secret)
		JWTSecret:       envRequired("JWT_SECRET"),
		RateLimitAuth:   envInt("RATE_LIMIT_AUTH", 20),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		TrustProxy:      envBool("TRUST_PROXY", false),

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GitHubClientID:     envString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: envString("GITHUB_CLIENT_SECRET", ""),

		// Content providers
		GNewsAPIKey:       envString("GNEWS_API_KEY", ""),
		OpenWeatherAPIKey: envString("OPENWEATHER_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction rejects development defaults that are unsafe to deploy.
func validateProduction(cfg *Config) {
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires a JWT_SECRET of at least 32 bytes")
		os.Exit(1)
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret == "" {
		slog.Error("GITHUB_CLIENT_ID is set but GITHUB_CLIENT_SECRET is missing")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != ""
}

func (c *Config) GitHubConfigured() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:     c.AppName,
		AppEnv:      c.AppEnv,
		Port:        c.Port,
		PublicURL:   c.PublicURL,
		FrontendURL: c.FrontendURL,

		GoogleClientID: c.GoogleClientID,
		GitHubClientID: c.GitHubClientID,
	}
}
