package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"google.golang.org/api/googleapi"
)

// ErrorKind is the failure taxonomy of a model call
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindRateLimit       ErrorKind = "rate_limit"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindAPI             ErrorKind = "api_error"
	KindNetwork         ErrorKind = "network_error"
)

// Error is a classified model call failure
type Error struct {
	Kind       ErrorKind
	Retryable  bool
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s (status %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an error with the default retry policy for its kind
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{
		Kind:      kind,
		Retryable: kind == KindTimeout || kind == KindRateLimit || kind == KindNetwork,
		Message:   message,
		Err:       err,
	}
}

// IsRetryable reports whether err is a classified, retryable failure
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

// KindOf returns the kind of a classified error, or KindAPI for anything else
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindAPI
}

// Classify maps any provider or transport error onto the taxonomy
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(KindTimeout, "request timed out", err)
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindAPI, Message: "request canceled", Err: err}
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return fromStatus(anthropicErr.StatusCode, err)
	}
	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		return fromStatus(googleErr.Code, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewError(KindTimeout, "network timeout", err)
		}
		return NewError(KindNetwork, "network failure", err)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return NewError(KindNetwork, "connection closed", err)
	}

	return fromMessage(err)
}

func fromStatus(status int, err error) *Error {
	var e *Error
	switch {
	case status == http.StatusTooManyRequests:
		e = NewError(KindRateLimit, "rate limited", err)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		e = NewError(KindTimeout, "upstream timeout", err)
	case status >= 500:
		e = NewError(KindAPI, "provider error", err)
		e.Retryable = true
	default:
		e = NewError(KindAPI, "request rejected", err)
	}
	e.StatusCode = status
	return e
}

// fromMessage classifies errors that carry no structured status
func fromMessage(err error) *Error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota"):
		return NewError(KindRateLimit, "rate limited", err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return NewError(KindTimeout, "request timed out", err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") || strings.Contains(msg, "unavailable"):
		return NewError(KindNetwork, "network failure", err)
	default:
		return NewError(KindAPI, "request failed", err)
	}
}
