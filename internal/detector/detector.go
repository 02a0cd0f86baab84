// Package detector asks an external classification service whether text reads as
// machine-written. Detection is advisory: every failure degrades to a passing result.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/logger"
	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	// DefaultThreshold is the score above which text is considered machine-written
	DefaultThreshold = 50
	// DefaultMinTextLength is the shortest text worth sending to the service
	DefaultMinTextLength = 250
	// DefaultTimeout bounds a detection call
	DefaultTimeout = 15 * time.Second
	// DefaultHeader carries the API key
	DefaultHeader = "X-Api-Key"

	// flaggedSentenceScore is the per-sentence probability (0-1) reported as flagged
	flaggedSentenceScore = 0.5
	maxResponseBytes     = 1 << 20
)

// Detector scores text for machine authorship
type Detector interface {
	Detect(ctx context.Context, text string) types.DetectionInfo
}

// Options configures the HTTP detector
type Options struct {
	URL           string        `mapstructure:"url" validate:"omitempty,url"`
	APIKey        string        `mapstructure:"api_key"`
	Header        string        `mapstructure:"header"`
	Threshold     int           `mapstructure:"threshold" validate:"gte=0,lte=100"`
	MinTextLength int           `mapstructure:"min_length" validate:"gte=0"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// DefaultOptions returns the default detector settings without an endpoint
func DefaultOptions() Options {
	return Options{
		Header:        DefaultHeader,
		Threshold:     DefaultThreshold,
		MinTextLength: DefaultMinTextLength,
		Timeout:       DefaultTimeout,
	}
}

// HTTPClient calls the detection service over HTTPS
type HTTPClient struct {
	opts       Options
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPClient creates a detector. A nil httpClient uses one bounded by opts.Timeout.
func NewHTTPClient(opts Options, httpClient *http.Client, log *zap.Logger) *HTTPClient {
	def := DefaultOptions()
	if opts.Header == "" {
		opts.Header = def.Header
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPClient{opts: opts, httpClient: httpClient, logger: logger.OrNop(log)}
}

// Threshold returns the configured pass/fail boundary
func (c *HTTPClient) Threshold() int {
	return c.opts.Threshold
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Score         *float64          `json:"score"`          // 0-100
	AIProbability *float64          `json:"ai_probability"` // 0-1
	Feedback      string            `json:"feedback"`
	Sentences     []json.RawMessage `json:"sentences"`
}

type scoredSentence struct {
	Text     string   `json:"text"`
	Sentence string   `json:"sentence"`
	Score    *float64 `json:"score"`
}

// Detect never fails; problems are reported through Fallback and Feedback
func (c *HTTPClient) Detect(ctx context.Context, text string) types.DetectionInfo {
	if len([]rune(strings.TrimSpace(text))) < c.opts.MinTextLength {
		return passing("Text too short for authorship detection; skipped.")
	}
	if c.opts.URL == "" || c.opts.APIKey == "" {
		return passing("Authorship detection is not configured; skipped.")
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	info, err := c.call(ctx, text)
	if err != nil {
		c.logger.Warn("authorship detection failed, using passing fallback", zap.Error(err))
		return passing(fmt.Sprintf("Authorship detection unavailable (%v); assuming human-written.", err))
	}
	return info
}

func (c *HTTPClient) call(ctx context.Context, text string) (types.DetectionInfo, error) {
	body, err := json.Marshal(detectRequest{Text: text})
	if err != nil {
		return types.DetectionInfo{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return types.DetectionInfo{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(c.opts.Header, c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.DetectionInfo{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.DetectionInfo{}, fmt.Errorf("service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return types.DetectionInfo{}, fmt.Errorf("failed to read response: %w", err)
	}
	var payload detectResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return types.DetectionInfo{}, fmt.Errorf("malformed response: %w", err)
	}

	score, ok := payload.percent()
	if !ok {
		return types.DetectionInfo{}, fmt.Errorf("malformed response: missing score")
	}
	info := types.DetectionInfo{
		Score:          score,
		IsHumanPassing: score <= c.opts.Threshold,
		Sentences:      flaggedSentences(payload.Sentences),
		Feedback:       payload.Feedback,
	}
	if info.Feedback == "" {
		info.Feedback = feedbackFor(info)
	}
	c.logger.Debug("authorship detection complete",
		zap.Int("score", score), zap.Bool("passing", info.IsHumanPassing))
	return info, nil
}

// percent reads the machine-authorship score on the 0-100 scale. score is already a
// percentage; ai_probability is a probability in [0,1]. score wins when both are present.
func (p detectResponse) percent() (int, bool) {
	switch {
	case p.Score != nil:
		return clampPercent(*p.Score), true
	case p.AIProbability != nil:
		return clampPercent(*p.AIProbability * 100), true
	}
	return 0, false
}

func clampPercent(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

// flaggedSentences accepts plain strings or {text|sentence, score} objects
func flaggedSentences(raw []json.RawMessage) []string {
	var out []string
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj scoredSentence
		if err := json.Unmarshal(r, &obj); err != nil {
			continue
		}
		text := strings.TrimSpace(obj.Text)
		if text == "" {
			text = strings.TrimSpace(obj.Sentence)
		}
		if text == "" || (obj.Score != nil && *obj.Score < flaggedSentenceScore) {
			continue
		}
		out = append(out, text)
	}
	return out
}

func feedbackFor(info types.DetectionInfo) string {
	if info.IsHumanPassing {
		return fmt.Sprintf("Reads as human-written (score %d).", info.Score)
	}
	if len(info.Sentences) > 0 {
		return fmt.Sprintf("Likely machine-written (score %d); %d sentences flagged.", info.Score, len(info.Sentences))
	}
	return fmt.Sprintf("Likely machine-written (score %d).", info.Score)
}

func passing(feedback string) types.DetectionInfo {
	return types.DetectionInfo{
		Score:          0,
		IsHumanPassing: true,
		Feedback:       feedback,
		Fallback:       true,
	}
}
