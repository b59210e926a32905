package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	SQLitePath  string
	DatabaseURL string // Postgres; takes precedence over SQLitePath when set
	RedisURL    string

	CORSAllowedOrigins []string

	HubSpot HubSpotConfig

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations
	TrustedProxies     []string // IPs or CIDRs allowed to set X-Forwarded-For
}

// HubSpotConfig holds the CRM connector settings.
type HubSpotConfig struct {
	APIKey             string
	FormURL            string
	APIBaseURL         string
	PreferencesBaseURL string
	PageURI            string
	PageName           string
	SettleDelay        time.Duration // Pause after marketing-contact conversion
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "3001"),
		Env:                getEnv("ENV", "development"),
		SQLitePath:         getEnv("SQLITE_PATH", "./data/plg.db"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitWhitelist: splitList(os.Getenv("RATE_LIMIT_WHITELIST")),
		AutoBlockEnabled:   getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
		HubSpot: HubSpotConfig{
			APIKey:             os.Getenv("HUBSPOT_API_KEY"),
			FormURL:            os.Getenv("HUBSPOT_FORM_URL"),
			APIBaseURL:         getEnv("HUBSPOT_API_BASE_URL", "https://api.hubapi.com"),
			PreferencesBaseURL: getEnv("HUBSPOT_PREFERENCES_BASE_URL", "https://api-eu1.hubapi.com"),
			PageURI:            getEnv("HUBSPOT_PAGE_URI", "http://localhost:3000/contact"),
			PageName:           getEnv("HUBSPOT_PAGE_NAME", "Contact Us"),
			SettleDelay:        getDuration("HUBSPOT_SETTLE_DELAY", time.Second),
		},
	}

	// In production, the CRM connector must be fully configured
	if cfg.Env == "production" {
		if cfg.HubSpot.APIKey == "" {
			panic("HUBSPOT_API_KEY is required in production")
		}
		if cfg.HubSpot.FormURL == "" {
			panic("HUBSPOT_FORM_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
