// Package llm provides the generative model client used for requirement extraction,
// résumé formatting and cover letter drafting.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form writing: formatting, cover letters
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

// Default call policy
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = time.Second
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 2048
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string

	// Timeout bounds a single attempt; the in-flight request is cancelled when it fires
	Timeout time.Duration
	// MaxRetries is the total number of attempts, including the first
	MaxRetries int
	// RetryDelay is multiplied by the attempt number to get the wait before the next attempt
	RetryDelay time.Duration

	Temperature float32
	MaxTokens   int
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return withDefaults(&Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	})
}

// DefaultClaudeConfig returns the default Anthropic configuration
func DefaultClaudeConfig() *Config {
	return withDefaults(&Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-sonnet-4-5",
			TierAdvanced: "claude-sonnet-4-5",
		},
	})
}

// ConfigFor returns the default configuration for a provider, falling back to Gemini
func ConfigFor(p Provider) *Config {
	if p == ProviderAnthropic {
		return DefaultClaudeConfig()
	}
	return DefaultGeminiConfig()
}

func withDefaults(c *Config) *Config {
	c.Timeout = DefaultTimeout
	c.MaxRetries = DefaultMaxRetries
	c.RetryDelay = DefaultRetryDelay
	c.Temperature = DefaultTemperature
	c.MaxTokens = DefaultMaxTokens
	return c
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
