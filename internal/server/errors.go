// Package server provides the HTTP API for the résumé matcher.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates the requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnavailable indicates an optional backend is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		verr *ErrValidation
		nf   *ErrNotFound
		unav *ErrUnavailable
		terr *pipeline.TailoringError
	)
	switch {
	case errors.As(err, &verr), errors.Is(err, db.ErrInvalidID):
		return http.StatusBadRequest
	case errors.As(err, &nf), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unav):
		return http.StatusServiceUnavailable
	case errors.As(err, &terr):
		return tailoringStatus(terr.Kind)
	default:
		return http.StatusInternalServerError
	}
}

func tailoringStatus(kind pipeline.ErrorKind) int {
	switch kind {
	case pipeline.KindParse, pipeline.KindJDAnalysis:
		return http.StatusUnprocessableEntity
	case pipeline.KindTimeout:
		return http.StatusGatewayTimeout
	case pipeline.KindAPI, pipeline.KindFormatting, pipeline.KindCoverLetter:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable "error" field of an error response
func errorCode(err error) string {
	var (
		verr *ErrValidation
		terr *pipeline.TailoringError
	)
	switch {
	case errors.As(err, &terr):
		return string(terr.Kind)
	case errors.As(err, &verr):
		return "validation_error"
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	return "internal_error"
}
