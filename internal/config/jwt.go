package config

import "fmt"

// DefaultJWTExpirationHours is the lifetime of issued tokens
const DefaultJWTExpirationHours = 24

// JWTConfig holds configuration for JWT token generation and validation.
// An empty Secret disables bearer authentication.
type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
	Required        bool   `mapstructure:"required"`
}

// Enabled reports whether tokens can be issued and verified
func (c JWTConfig) Enabled() bool {
	return c.Secret != ""
}

// Validate checks the JWT settings
func (c JWTConfig) Validate() error {
	if c.Required && c.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required when authentication is required")
	}
	if c.Secret != "" && len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters, got: %d", len(c.Secret))
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT expiration must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
