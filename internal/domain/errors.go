package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrOrderNotFound       = errors.New("order not found")
	ErrDuplicateOrder      = errors.New("order already exists")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotificationFailed  = errors.New("notification failed")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrOrderFinalized      = errors.New("order already completed")
	ErrInvalidSignature    = errors.New("invalid signature")
)

// ValidationError describes a rejected checkout field. It unwraps to ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
