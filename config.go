package herdgate

import (
	"errors"
	"strings"
	"time"
)

// Config defines the full engine configuration. Config instances are intended
// to be set up during initialization and then treated as immutable.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Routes  RoutesConfig
	Events  EventsConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig describes the REST backend the session is established against.
// Transport-level timeouts belong to the injected HTTP client, not here.
type APIConfig struct {
	BaseURL string

	// TokenEndpoint, ProfileEndpoint and RegisterEndpoint default to the
	// backend contract paths and exist only for test harnesses.
	TokenEndpoint    string
	ProfileEndpoint  string
	RegisterEndpoint string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session establishment behavior.
type SessionConfig struct {
	// TokenPreflight enables an unverified expiry peek at the stored bearer
	// token during Bootstrap. An already-expired token is discarded without a
	// network round-trip. The peek never treats a token as valid; it can only
	// short-circuit the rejection path.
	TokenPreflight bool

	// PreflightLeeway widens the expiry comparison so a token about to expire
	// mid-flight is still sent to the backend for the authoritative answer.
	PreflightLeeway time.Duration
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig is the static route classification table consumed by the
// access guard. Paths listed in Public require no session; every other path
// is protected by default.
type RoutesConfig struct {
	Public    []string
	LoginPath string
	HomePath  string

	// AuthEntryPaths is the login/register class: public paths an
	// authenticated user is bounced away from, back to HomePath. Public paths
	// not listed here (e.g. forgot-password) stay reachable while signed in.
	AuthEntryPaths []string
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig controls the async session event dispatcher.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			TokenEndpoint:    "/auth/token",
			ProfileEndpoint:  "/auth/me",
			RegisterEndpoint: "/auth/register",
		},
		Session: SessionConfig{
			TokenPreflight:  false,
			PreflightLeeway: 30 * time.Second,
		},
		Routes: RoutesConfig{
			Public:         []string{"/login", "/register", "/forgot-password"},
			LoginPath:      "/login",
			HomePath:       "/",
			AuthEntryPaths: []string{"/login", "/register"},
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the configuration used by [New] before any overrides.
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.API.TokenEndpoint == "" || c.API.ProfileEndpoint == "" || c.API.RegisterEndpoint == "" {
		return errors.New("API endpoints must not be empty")
	}
	if !strings.HasPrefix(c.API.TokenEndpoint, "/") ||
		!strings.HasPrefix(c.API.ProfileEndpoint, "/") ||
		!strings.HasPrefix(c.API.RegisterEndpoint, "/") {
		return errors.New("API endpoints must be rooted paths")
	}
	if c.Routes.LoginPath == "" || c.Routes.HomePath == "" {
		return errors.New("Routes LoginPath and HomePath must not be empty")
	}
	if !containsPath(c.Routes.Public, c.Routes.LoginPath) {
		return errors.New("Routes LoginPath must be classified public")
	}
	if containsPath(c.Routes.Public, c.Routes.HomePath) {
		return errors.New("Routes HomePath must not be classified public")
	}
	for _, p := range c.Routes.AuthEntryPaths {
		if !containsPath(c.Routes.Public, p) {
			return errors.New("Routes AuthEntryPaths must be a subset of Public")
		}
	}
	if c.Session.PreflightLeeway < 0 {
		return errors.New("Session PreflightLeeway must not be negative")
	}
	if c.Events.Enabled && c.Events.BufferSize < 0 {
		return errors.New("Events BufferSize must not be negative")
	}
	return nil
}

func containsPath(paths []string, p string) bool {
	for _, v := range paths {
		if v == p {
			return true
		}
	}
	return false
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Routes.Public = append([]string(nil), cfg.Routes.Public...)
	out.Routes.AuthEntryPaths = append([]string(nil), cfg.Routes.AuthEntryPaths...)
	return out
}
