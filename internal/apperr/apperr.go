// Package apperr defines the error taxonomy shared by the catalog usecases
// and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized indicates a missing or invalid tenant scope.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the entity is absent or not owned by the tenant.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the caller supplied invalid data.
	ErrValidation = errors.New("validation failed")
	// ErrInternal indicates a storage failure or aborted transaction.
	ErrInternal = errors.New("internal error")
)

// Validation returns an error wrapping ErrValidation with a human readable message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an error wrapping ErrNotFound.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Unauthorized returns an error wrapping ErrUnauthorized.
func Unauthorized(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
}

// Internal wraps err as ErrInternal unless it already carries one of the
// taxonomy sentinels, in which case it is returned untouched.
func Internal(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) || errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}

// HTTPStatus maps err onto a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine readable error code used in response envelopes.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthenticated"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "invalid_request"
	default:
		return "internal"
	}
}
