package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// jsonInstruction is appended to prompts in JSON mode since the Messages API has no MIME switch
const jsonInstruction = "\n\nRespond with a single JSON value and nothing else."

// ClaudeClient implements Client for Anthropic Claude
type ClaudeClient struct {
	client anthropic.Client
	config *Config
}

// NewClaudeClient creates a new Claude client
func NewClaudeClient(config *Config, apiKey string, opts ...option.RequestOption) (*ClaudeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &ClaudeClient{
		client: anthropic.NewClient(opts...),
		config: config,
	}, nil
}

// Generate calls the model selected by the request
func (c *ClaudeClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName, temperature, maxTokens, err := c.config.resolve(req)
	if err != nil {
		return "", err
	}

	prompt := req.Prompt
	if req.JSONMode {
		prompt += jsonInstruction
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.AsText().Text)
		}
	}
	text := strings.Join(parts, "")
	if strings.TrimSpace(text) == "" {
		return "", NewError(KindInvalidResponse, "no text content in Claude response", nil)
	}
	if req.JSONMode {
		return CleanJSONBlock(text), nil
	}
	return text, nil
}

// Close is a no-op; the HTTP client is shared
func (c *ClaudeClient) Close() error {
	return nil
}
