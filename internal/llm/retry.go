package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/logger"
)

// RetryingClient bounds every attempt with a timeout and retries retryable failures
// with a linearly increasing delay.
type RetryingClient struct {
	inner      Client
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

// RetryOption configures a RetryingClient
type RetryOption func(*RetryingClient)

// WithLogger sets the logger used for retry warnings
func WithLogger(l *zap.Logger) RetryOption {
	return func(c *RetryingClient) { c.logger = l }
}

// WithSleep replaces the backoff wait, mainly for tests
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(c *RetryingClient) { c.sleep = sleep }
}

// NewRetryingClient wraps inner with the call policy from config
func NewRetryingClient(inner Client, config *Config, opts ...RetryOption) *RetryingClient {
	if config == nil {
		config = DefaultConfig()
	}
	c := &RetryingClient{
		inner:      inner,
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		sleep:      sleepContext,
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.WithModel(c.logger, string(config.Provider), "")
	return c
}

// Generate runs the request, retrying retryable failures up to the configured attempt count.
// Errors are always returned as *Error.
func (c *RetryingClient) Generate(ctx context.Context, req Request) (string, error) {
	var last *Error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			delay := c.retryDelay * time.Duration(attempt-1)
			if err := c.sleep(ctx, delay); err != nil {
				return "", Classify(err)
			}
		}

		text, err := c.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		last = Classify(err)

		if ctx.Err() != nil || !IsRetryable(last) {
			return "", last
		}
		c.logger.Warn("model call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxRetries),
			zap.String("kind", string(last.Kind)),
			zap.Error(last))
	}
	return "", last
}

// attempt performs one call under its own deadline; the deadline cancels the request itself
func (c *RetryingClient) attempt(ctx context.Context, req Request) (string, error) {
	actx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.inner.Generate(actx, req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
			return "", NewError(KindTimeout, "request exceeded "+c.timeout.String(), err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", NewError(KindInvalidResponse, "empty response", nil)
	}
	return text, nil
}

// Close closes the wrapped client
func (c *RetryingClient) Close() error {
	return c.inner.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
