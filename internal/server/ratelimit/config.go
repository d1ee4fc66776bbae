package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EndpointConfig represents rate limiting configuration for a group of endpoints.
type EndpointConfig struct {
	// Path is matched segment by segment. "*" matches any one segment and a
	// trailing "/" matches any deeper path.
	Path   string
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// envSettings are the variables read by LoadConfig, all under the caller's prefix.
type envSettings struct {
	Enabled         bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	DefaultLimit    int           `envconfig:"RATE_LIMIT_DEFAULT_LIMIT" default:"1000"`
	DefaultWindow   time.Duration `envconfig:"RATE_LIMIT_DEFAULT_WINDOW" default:"1m"`
	CleanupInterval time.Duration `envconfig:"RATE_LIMIT_CLEANUP_INTERVAL" default:"5m"`
	Whitelist       []string      `envconfig:"RATE_LIMIT_WHITELIST"`
	Blacklist       []string      `envconfig:"RATE_LIMIT_BLACKLIST"`
	AILimit         int           `envconfig:"RATE_LIMIT_AI_LIMIT" default:"30"`
}

// LoadConfig loads rate limiting configuration from environment variables named
// <prefix>_RATE_LIMIT_*.
func LoadConfig(prefix string) (*Config, error) {
	var env envSettings
	if err := envconfig.Process(prefix, &env); err != nil {
		return nil, fmt.Errorf("config error: rate limit: %w", err)
	}
	if !env.Enabled {
		return &Config{Enabled: false}, nil
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.DefaultLimit,
		DefaultWindow:   env.DefaultWindow,
		CleanupInterval: env.CleanupInterval,
		Whitelist:       ipSet(env.Whitelist),
		Blacklist:       ipSet(env.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(env.AILimit),
	}, nil
}

// DefaultEndpointConfigs returns the endpoint tiers. aiLimit applies per minute to
// every route that calls the model.
func DefaultEndpointConfigs(aiLimit int) []EndpointConfig {
	if aiLimit <= 0 {
		aiLimit = 30
	}
	aiBurst := max(1, aiLimit/6)

	return []EndpointConfig{
		// Tier 1: model calls
		{Path: "/api/", Method: http.MethodPost, Limit: aiLimit, Window: time.Minute, Burst: aiBurst},
		{Path: "/documents/*/experience/*/enhance", Method: http.MethodPost, Limit: aiLimit, Window: time.Minute, Burst: aiBurst},
		{Path: "/documents/*/projects/*/enhance", Method: http.MethodPost, Limit: aiLimit, Window: time.Minute, Burst: aiBurst},
		{Path: "/documents/*/summary/generate", Method: http.MethodPost, Limit: aiLimit, Window: time.Minute, Burst: aiBurst},

		// Tier 2: session creation
		{Path: "/documents", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/resumes/*/open", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},

		// Tier 3: document edits
		{Path: "/documents/", Method: http.MethodPost, Limit: 600, Window: time.Minute, Burst: 60},
		{Path: "/documents/", Method: http.MethodPut, Limit: 600, Window: time.Minute, Burst: 60},
		{Path: "/documents/", Method: http.MethodPatch, Limit: 600, Window: time.Minute, Burst: 60},
		{Path: "/documents/", Method: http.MethodDelete, Limit: 600, Window: time.Minute, Burst: 60},

		// Reads use the default limit; /health and /metrics are unlimited in the matcher.
	}
}

// ipSet turns a list of addresses into a lookup set, skipping blanks.
func ipSet(list []string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
