package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Request is a single generation call
type Request struct {
	Prompt   string
	JSONMode bool
	// MaxTokens caps the response length; zero uses the configured default
	MaxTokens int
	// Temperature of zero uses the configured default
	Temperature float32
	// Model overrides the model selected by Tier when set
	Model string
	Tier  ModelTier
}

// Client is an abstraction over LLM providers
type Client interface {
	// Generate returns the text of one model response
	Generate(ctx context.Context, req Request) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a provider client from configuration, wrapped with the retry policy
func NewClient(ctx context.Context, config *Config, apiKey string, opts ...RetryOption) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var inner Client
	var err error
	switch config.Provider {
	case ProviderAnthropic:
		inner, err = NewClaudeClient(config, apiKey)
	default:
		inner, err = NewGeminiClient(ctx, config, apiKey)
	}
	if err != nil {
		return nil, err
	}
	return NewRetryingClient(inner, config, opts...), nil
}

// resolve fills request defaults from the configuration
func (c *Config) resolve(req Request) (model string, temperature float32, maxTokens int, err error) {
	model = req.Model
	if model == "" {
		model = c.GetModel(req.Tier)
	}
	if model == "" {
		return "", 0, 0, NewError(KindAPI, fmt.Sprintf("no model configured for tier %s", req.Tier), nil)
	}
	temperature = req.Temperature
	if temperature == 0 {
		temperature = c.Temperature
	}
	maxTokens = req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return model, temperature, maxTokens, nil
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Generate calls the model selected by the request
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName, temperature, maxTokens, err := c.config.resolve(req)
	if err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	if req.JSONMode {
		return CleanJSONBlock(text), nil
	}
	return text, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", NewError(KindInvalidResponse, "no candidates in response", nil)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", NewError(KindInvalidResponse, "no content in response", nil)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", NewError(KindInvalidResponse, "no text parts in response", nil)
	}

	return strings.Join(parts, ""), nil
}
