package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/resume-matcher/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" matches by prefix)
	Method string        // HTTP method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings builds the limiter configuration from the server config section.
// Endpoints that call the model backend share the stricter tailor limit.
func FromSettings(rl config.RateLimitConfig) *Config {
	if !rl.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    rl.DefaultLimit,
		DefaultWindow:   rl.DefaultWindow,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       toSet(rl.Whitelist),
		Blacklist:       toSet(rl.Blacklist),
		EndpointConfigs: ModelEndpoints(rl.TailorLimit, rl.TailorWindow, rl.Burst),
	}
}

// ModelEndpoints returns the endpoint limits for routes that call the model backend.
func ModelEndpoints(limit int, window time.Duration, burst int) []EndpointConfig {
	paths := []string{"/tailor", "/tailor/", "/analyze", "/match"}
	out := make([]EndpointConfig, 0, len(paths))
	for _, p := range paths {
		out = append(out, EndpointConfig{Path: p, Method: "POST", Limit: limit, Window: window, Burst: burst})
	}
	return out
}

func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
