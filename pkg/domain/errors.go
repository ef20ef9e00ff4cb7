package domain

import (
	"errors"
	"fmt"
)

// Authorization errors
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("operation not permitted")
	ErrInvalidToken    = errors.New("invalid token")
)

// Account errors
var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailAlreadyExists       = errors.New("Email already exists")
	ErrInvalidCredentials       = errors.New("Incorrect email or password.")
	ErrAccountLocked            = errors.New("Account locked due to too many failed login attempts.")
	ErrEmailNotVerified         = errors.New("Email not verified.")
	ErrVerificationTokenInvalid = errors.New("invalid or expired verification token")
)

// ErrRoleNotGrantable rejects a role assignment the actor may not make.
// It wraps ErrForbidden.
var ErrRoleNotGrantable = fmt.Errorf("%w: role cannot be granted by this actor", ErrForbidden)

// ErrValidation is the parent of every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a rejected input field.
// Missing distinguishes an absent required field from a present but invalid one.
type ValidationError struct {
	Field   string
	Message string
	Missing bool
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MissingField returns a ValidationError for an absent required field.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "field required", Missing: true}
}

// InvalidField returns a ValidationError for a present field with a bad value.
func InvalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
