// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/scribe/scribe/internal/repository"
)

// Service errors.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("not the owner of this post")
	ErrPostNotFound       = errors.New("post not found")
	ErrUnavailable        = errors.New("service unavailable")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// storeError maps connectivity failures to ErrUnavailable and wraps
// everything else with op. The cause stays in the chain for logging.
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
