// Package parsing turns job descriptions into structured requirement sets, using the
// model backend when it cooperates and a deterministic extractor when it does not.
package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/logger"
	"github.com/jonathan/resume-matcher/internal/prompts"
	"github.com/jonathan/resume-matcher/internal/schemas"
	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	analysisMaxTokens   = 2048
	analysisTemperature = 0.1
)

// Analyzer extracts requirement sets from job descriptions
type Analyzer struct {
	client llm.Client
	cache  cache.Store
	logger *zap.Logger
	tier   llm.ModelTier
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithCache consults and fills store around model calls
func WithCache(store cache.Store) Option {
	return func(a *Analyzer) { a.cache = store }
}

// WithLogger sets the analyzer logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithTier selects the model tier used for extraction
func WithTier(tier llm.ModelTier) Option {
	return func(a *Analyzer) { a.tier = tier }
}

// NewAnalyzer creates an analyzer. A nil client always uses the deterministic extractor.
func NewAnalyzer(client llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{client: client, tier: llm.TierStandard}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logger.OrNop(a.logger).With(zap.String(logger.FieldStep, "analyze"))
	return a
}

// Analyze extracts the requirement set of jdText. Backend and parse failures fall
// back to FallbackExtract; the only error besides empty input is a cancelled context.
func (a *Analyzer) Analyze(ctx context.Context, jdText string) (*types.RequirementSet, error) {
	text := strings.TrimSpace(jdText)
	if text == "" {
		return nil, &ValidationError{Field: "job_description", Message: "job description is empty"}
	}

	key := cache.Key(text)
	if a.cache != nil {
		rs, err := a.cache.Get(ctx, key)
		switch {
		case err == nil:
			a.logger.Debug("requirement cache hit", zap.String("key", key[:12]))
			return rs, nil
		case !errors.Is(err, cache.ErrMiss):
			a.logger.Warn("requirement cache lookup failed", zap.Error(err))
		}
	}

	rs, err := a.extract(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &APICallError{Op: "requirement extraction", Err: ctxErr}
		}
		a.logger.Warn("model extraction failed, using deterministic extractor", zap.Error(err))
		return FallbackExtract(text), nil
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, rs); err != nil {
			a.logger.Warn("requirement cache store failed", zap.Error(err))
		}
	}
	return rs, nil
}

func (a *Analyzer) extract(ctx context.Context, text string) (*types.RequirementSet, error) {
	if a.client == nil {
		return nil, errors.New("no model client configured")
	}

	prompt, err := prompts.Render(prompts.AnalysisFile, prompts.KeyExtractRequirements, map[string]string{
		"JobText": text,
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.client.Generate(ctx, llm.Request{
		Prompt:      prompt,
		JSONMode:    true,
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
		Tier:        a.tier,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("model extraction response", zap.String("response", logger.TruncateForLog(raw, 500)))
	return DecodeRequirementSet(raw)
}

// DecodeRequirementSet parses, schema-checks and normalizes a model response
func DecodeRequirementSet(raw string) (*types.RequirementSet, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &doc); err != nil {
		return nil, &ParseError{Stage: "json", Err: err}
	}
	if err := schemas.Validate(schemas.RequirementSet, doc); err != nil {
		return nil, &ParseError{Stage: "schema", Err: err}
	}

	var rs types.RequirementSet
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &rs,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, &ParseError{Stage: "decode", Err: err}
	}

	Normalize(&rs)
	return &rs, nil
}
