// Package rendering produces the template-based résumé and cover letter used by quick mode.
package rendering

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when the profile or requirement set to render is nil
var ErrMissingInput = errors.New("missing render input")

// TemplateError reports an embedded template that failed to execute
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }
