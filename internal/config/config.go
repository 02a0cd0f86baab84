// Package config loads application settings from an optional file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/detector"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/scoring"
)

// EnvPrefix prefixes every application environment variable
const EnvPrefix = "RESUME_MATCHER"

// Config is the full application configuration
type Config struct {
	LLM      LLMConfig           `mapstructure:"llm"`
	Detector detector.Options    `mapstructure:"detector"`
	Matching matching.Thresholds `mapstructure:"matching"`
	Scoring  scoring.Weights     `mapstructure:"scoring"`
	Pipeline PipelineConfig      `mapstructure:"pipeline"`
	Server   ServerConfig        `mapstructure:"server"`

	DatabaseURL string        `mapstructure:"database_url"`
	RedisURL    string        `mapstructure:"redis_url"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// LLMConfig selects and tunes the model backend
type LLMConfig struct {
	Provider   string            `mapstructure:"provider" validate:"oneof=gemini anthropic"`
	APIKey     string            `mapstructure:"api_key"`
	Models     map[string]string `mapstructure:"models"`
	Timeout    time.Duration     `mapstructure:"timeout" validate:"gte=0"`
	MaxRetries int               `mapstructure:"max_retries" validate:"gte=1,lte=10"`
	BaseDelay  time.Duration     `mapstructure:"base_delay" validate:"gte=0"`
}

// PipelineConfig tunes the generation orchestrator
type PipelineConfig struct {
	FallbackToTemplates bool          `mapstructure:"fallback_to_templates"`
	Timeout             time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port           int             `mapstructure:"port" validate:"gte=1,lte=65535"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	JWT            JWTConfig       `mapstructure:"jwt"`
}

// RateLimitConfig holds per-client token bucket settings
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DefaultLimit  int           `mapstructure:"default_limit" validate:"gte=0"`
	DefaultWindow time.Duration `mapstructure:"default_window" validate:"gte=0"`
	TailorLimit   int           `mapstructure:"tailor_limit" validate:"gte=0"`
	TailorWindow  time.Duration `mapstructure:"tailor_window" validate:"gte=0"`
	Burst         int           `mapstructure:"burst" validate:"gte=0"`
	Whitelist     []string      `mapstructure:"whitelist"`
	Blacklist     []string      `mapstructure:"blacklist"`
}

// envBindings maps config keys to the environment variables that may set them, in priority order
var envBindings = map[string][]string{
	"llm.provider":                   {EnvPrefix + "_LLM_PROVIDER", "LLM_PROVIDER"},
	"llm.timeout":                    {EnvPrefix + "_LLM_TIMEOUT"},
	"llm.max_retries":                {EnvPrefix + "_LLM_MAX_RETRIES"},
	"llm.base_delay":                 {EnvPrefix + "_LLM_BASE_DELAY"},
	"detector.url":                   {EnvPrefix + "_DETECTOR_URL", "DETECTOR_URL"},
	"detector.api_key":               {EnvPrefix + "_DETECTOR_API_KEY", "DETECTOR_API_KEY"},
	"pipeline.fallback_to_templates": {EnvPrefix + "_FALLBACK_TO_TEMPLATES"},
	"server.port":                    {EnvPrefix + "_PORT", "PORT"},
	"server.jwt.secret":              {EnvPrefix + "_JWT_SECRET", "JWT_SECRET"},
	"server.jwt.required":            {EnvPrefix + "_JWT_REQUIRED"},
	"server.rate_limit.enabled":      {EnvPrefix + "_RATE_LIMIT_ENABLED", "RATE_LIMIT_ENABLED"},
	"database_url":                   {EnvPrefix + "_DATABASE_URL", "DATABASE_URL"},
	"redis_url":                      {EnvPrefix + "_REDIS_URL", "REDIS_URL"},
	"cache_ttl":                      {EnvPrefix + "_CACHE_TTL"},
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:   string(llm.ProviderGemini),
			Timeout:    llm.DefaultTimeout,
			MaxRetries: llm.DefaultMaxRetries,
			BaseDelay:  llm.DefaultRetryDelay,
		},
		Detector: detector.DefaultOptions(),
		Matching: matching.DefaultThresholds(),
		Scoring:  scoring.DefaultWeights(),
		Pipeline: PipelineConfig{Timeout: 3 * time.Minute},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:       true,
				DefaultLimit:  600,
				DefaultWindow: time.Minute,
				TailorLimit:   30,
				TailorWindow:  time.Hour,
				Burst:         5,
			},
			JWT: JWTConfig{ExpirationHours: DefaultJWTExpirationHours},
		},
		CacheTTL: cache.DefaultTTL,
	}
}

// Load reads the config file at path (optional, JSON or YAML), overlays environment
// variables, fills the provider API key, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = apiKeyFromEnv(llm.Provider(cfg.LLM.Provider))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// apiKeyFromEnv reads the conventional key variable for a provider
func apiKeyFromEnv(p llm.Provider) string {
	if key := os.Getenv(EnvPrefix + "_LLM_API_KEY"); key != "" {
		return key
	}
	if p == llm.ProviderAnthropic {
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return os.Getenv("GEMINI_API_KEY")
}

var validate = validator.New()

// Validate checks struct tags and the cross-field rules the tags cannot express
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Server.JWT.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a copy with empty strings and zero numbers filled from defaults.
// This is used to apply loaded values underneath CLI flag overrides.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.LLM.Provider == "" {
		result.LLM.Provider = defaults.LLM.Provider
	}
	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if len(result.LLM.Models) == 0 {
		result.LLM.Models = defaults.LLM.Models
	}
	if result.LLM.Timeout == 0 {
		result.LLM.Timeout = defaults.LLM.Timeout
	}
	if result.LLM.MaxRetries == 0 {
		result.LLM.MaxRetries = defaults.LLM.MaxRetries
	}
	if result.LLM.BaseDelay == 0 {
		result.LLM.BaseDelay = defaults.LLM.BaseDelay
	}
	if result.Detector.URL == "" {
		result.Detector = defaults.Detector
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.JWT.Secret == "" {
		result.Server.JWT = defaults.Server.JWT
	}

	// Bool fields: cannot distinguish unset from false, so CLI flags always win

	return result
}

// LLMSettings converts the section into the model client configuration
func (c LLMConfig) LLMSettings() *llm.Config {
	cfg := llm.ConfigFor(llm.Provider(c.Provider))
	for tier, model := range c.Models {
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.MaxRetries > 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	if c.BaseDelay > 0 {
		cfg.RetryDelay = c.BaseDelay
	}
	return cfg
}
