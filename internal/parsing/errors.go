package parsing

import "fmt"

// APICallError is returned when requirement extraction was abandoned because the
// caller's context ended before the model answered
type APICallError struct {
	Op  string
	Err error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APICallError) Unwrap() error { return e.Err }

// ParseError reports a model response that could not be turned into a requirement set.
// Stage names the step that rejected it: json, schema or decode.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model response rejected at %s stage: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports analyzer input that cannot be processed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
