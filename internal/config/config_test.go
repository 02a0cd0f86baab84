package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/llm"
)

// clearEnv unsets every variable Load consults for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{"GEMINI_API_KEY", "ANTHROPIC_API_KEY", EnvPrefix + "_LLM_API_KEY"}
	for _, envs := range envBindings {
		vars = append(vars, envs...)
	}
	for _, v := range vars {
		if old, ok := os.LookupEnv(v); ok {
			require.NoError(t, os.Unsetenv(v))
			t.Cleanup(func() { _ = os.Setenv(v, old) })
		}
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.LLM, cfg.LLM)
	assert.Equal(t, def.Matching, cfg.Matching)
	assert.Equal(t, def.Scoring, cfg.Scoring)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
}

func TestLoad_YAMLFileOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "resume_matcher.yaml", `
llm:
  provider: anthropic
  timeout: 10s
  models:
    lite: claude-3-5-haiku-latest
matching:
  technical_match: 75
scoring:
  floor: 20
detector:
  url: https://detector.example.com/v1/detect
  threshold: 40
server:
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, llm.DefaultMaxRetries, cfg.LLM.MaxRetries)
	assert.Equal(t, 75, cfg.Matching.TechnicalMatch)
	assert.Equal(t, 50, cfg.Matching.SoftMatch)
	assert.Equal(t, 20, cfg.Scoring.Floor)
	assert.Equal(t, 95, cfg.Scoring.Ceiling)
	assert.Equal(t, 40, cfg.Detector.Threshold)
	assert.Equal(t, "X-Api-Key", cfg.Detector.Header)
	assert.Equal(t, 9090, cfg.Server.Port)

	settings := cfg.LLM.LLMSettings()
	assert.Equal(t, llm.ProviderAnthropic, settings.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.GetModel(llm.TierLite))
	assert.Equal(t, 10*time.Second, settings.Timeout)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.json", `{"database_url": "postgres://file", "server": {"port": 9000}}`)

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv(EnvPrefix+"_PORT", "7000")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("DETECTOR_API_KEY", "detector-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, "detector-key", cfg.Detector.APIKey)
}

func TestLoad_ProviderSpecificAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic-key", cfg.LLM.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown provider", content: `{"llm": {"provider": "openai"}}`, wantErr: "Provider"},
		{name: "threshold out of range", content: `{"matching": {"technical_match": 150}}`, wantErr: "TechnicalMatch"},
		{name: "strategy score out of range", content: `{"matching": {"skill_exact": 150}}`, wantErr: "SkillExact"},
		{name: "negative strategy score", content: `{"matching": {"raw_text": -5}}`, wantErr: "RawText"},
		{name: "bullet ceiling above skill match", content: `{"matching": {"bullet_max": 96}}`, wantErr: "bullet_max 96 must stay below skill_exact 95"},
		{name: "floor above ceiling", content: `{"scoring": {"floor": 90, "ceiling": 80}}`, wantErr: "config error"},
		{name: "short jwt secret", content: `{"server": {"jwt": {"secret": "short"}}}`, wantErr: "at least 16"},
		{name: "malformed file", content: `{ invalid json }`, wantErr: "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "config.json", tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Default()
	defaults.LLM.APIKey = "default-key"
	defaults.DatabaseURL = "postgres://default"

	overrides := Config{
		LLM:         LLMConfig{Provider: "anthropic"},
		DatabaseURL: "postgres://flag",
	}
	merged := overrides.MergeWithDefaults(defaults)

	assert.Equal(t, "anthropic", merged.LLM.Provider)
	assert.Equal(t, "default-key", merged.LLM.APIKey)
	assert.Equal(t, llm.DefaultTimeout, merged.LLM.Timeout)
	assert.Equal(t, "postgres://flag", merged.DatabaseURL)
	assert.Equal(t, 8080, merged.Server.Port)
	assert.Equal(t, defaults.CacheTTL, merged.CacheTTL)
}
