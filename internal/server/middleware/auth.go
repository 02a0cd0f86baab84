// Package middleware provides HTTP middleware for bearer-token authentication.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const subjectKey ContextKey = "subject"

// ErrNoSubject is returned when the request carries no authenticated subject
var ErrNoSubject = errors.New("no authenticated subject in request context")

// TokenValidator validates a bearer token and returns its subject.
type TokenValidator interface {
	ValidateToken(tokenString string) (SubjectGetter, error)
}

// SubjectGetter extracts the client identity from token claims.
type SubjectGetter interface {
	GetSubject() (string, error)
}

// Auth validates bearer tokens and stores the token subject in the request context.
// When required is false, requests without an Authorization header pass through
// unauthenticated, but a present and invalid token is still rejected.
func Auth(validator TokenValidator, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					unauthorized(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				unauthorized(w)
				return
			}
			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="resume-matcher"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// Subject returns the authenticated subject stored by Auth.
func Subject(r *http.Request) (string, error) {
	subject, ok := r.Context().Value(subjectKey).(string)
	if !ok || subject == "" {
		return "", ErrNoSubject
	}
	return subject, nil
}
