package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/mrlokans/booksearch/internal/catalog"
)

type (
	Config struct {
		HTTP
		Global
		Catalog
		State
		Session
		Logging
	}

	HTTP struct {
		Port    int32
		Host    string
		GinMode string // "debug", "release" or "test"
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Catalog struct {
		BaseURL           string
		UserAgent         string
		Timeout           time.Duration
		RequestsPerSecond float64 // 0 disables client-side rate limiting
	}
	State struct {
		DiscardStaleResponses bool // Drop results of fetches superseded by a newer one
		CaptureDetailErrors   bool // Record every detail-fetch failure message, not only string bodies
	}
	Session struct {
		Lifetime      time.Duration
		SecureCookies bool   // Set to false for local dev without HTTPS
		SweepSchedule string // Cron format: "*/10 * * * *" = every 10 minutes
		MaxStores     int    // Cap on in-memory session stores; 0 means unbounded
	}
	Logging struct {
		Level  string
		Format string // "text" or "json"
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	// Catalog defaults
	v.SetDefault("catalog_base_url", catalog.DefaultBaseURL)
	v.SetDefault("catalog_user_agent", catalog.DefaultUserAgent)
	v.SetDefault("catalog_timeout", catalog.DefaultTimeout)
	v.SetDefault("catalog_requests_per_second", 5)

	// State container defaults
	v.SetDefault("discard_stale_responses", true)
	v.SetDefault("capture_detail_errors", false)

	// Session defaults
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("session_secure_cookies", true)
	v.SetDefault("session_sweep_schedule", "*/10 * * * *")
	v.SetDefault("session_max_stores", 10000)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	return &Config{
		HTTP: HTTP{
			Port:    v.GetInt32("PORT"),
			Host:    v.GetString("HOST"),
			GinMode: v.GetString("GIN_MODE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Catalog: Catalog{
			BaseURL:           v.GetString("CATALOG_BASE_URL"),
			UserAgent:         v.GetString("CATALOG_USER_AGENT"),
			Timeout:           v.GetDuration("CATALOG_TIMEOUT"),
			RequestsPerSecond: v.GetFloat64("CATALOG_REQUESTS_PER_SECOND"),
		},
		State: State{
			DiscardStaleResponses: v.GetBool("DISCARD_STALE_RESPONSES"),
			CaptureDetailErrors:   v.GetBool("CAPTURE_DETAIL_ERRORS"),
		},
		Session: Session{
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SESSION_SECURE_COOKIES"),
			SweepSchedule: v.GetString("SESSION_SWEEP_SCHEDULE"),
			MaxStores:     v.GetInt("SESSION_MAX_STORES"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
