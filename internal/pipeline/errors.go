package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-matcher/internal/llm"
)

// ErrorKind identifies the pipeline stage that failed
type ErrorKind string

const (
	KindParse       ErrorKind = "parse_error"
	KindJDAnalysis  ErrorKind = "jd_analysis_error"
	KindMatching    ErrorKind = "matching_error"
	KindFormatting  ErrorKind = "formatting_error"
	KindCoverLetter ErrorKind = "cover_letter_error"
	KindTimeout     ErrorKind = "timeout"
	KindAPI         ErrorKind = "api_error"
)

// TailoringError is the only error type returned by the orchestrator
type TailoringError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *TailoringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tailoring %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("tailoring %s: %s", e.Kind, e.Message)
}

func (e *TailoringError) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of a TailoringError, or KindAPI for anything else
func KindOf(err error) ErrorKind {
	var te *TailoringError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindAPI
}

// stageError wraps err for the stage that produced it. Timeouts keep their own
// kind whichever stage they hit.
func stageError(stage ErrorKind, message string, err error) *TailoringError {
	var te *TailoringError
	if errors.As(err, &te) {
		return te
	}
	if isTimeout(err) {
		return &TailoringError{Kind: KindTimeout, Message: message, Cause: err}
	}
	return &TailoringError{Kind: stage, Message: message, Cause: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var le *llm.Error
	return errors.As(err, &le) && le.Kind == llm.KindTimeout
}
