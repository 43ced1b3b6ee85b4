// Package apperr holds the error taxonomy shared by the service, cache and transport layers.
package apperr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// UpstreamError means an external price or bank API was unavailable or answered non-2xx.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream responded %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func Upstream(service string, status int, err error) error {
	if err == nil {
		err = errors.New("unexpected response")
	}
	return &UpstreamError{Service: service, StatusCode: status, Err: err}
}

// PersistenceError wraps a failed database call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: errors.WithStack(err)}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"type"`
}

type FieldErrors []FieldError

// ValidationError is raised when an input schema rejects a submission.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthError means the session is missing, invalid or not allowed to touch the resource.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return "auth: " + e.Reason }

func Auth(reason string) error { return &AuthError{Reason: reason} }

var ErrNotFound = errors.New("not found")

func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Fields returns the per-field messages of a validation error, nil otherwise.
func Fields(err error) FieldErrors {
	var target *ValidationError
	if errors.As(err, &target) {
		return target.Fields
	}
	return nil
}
