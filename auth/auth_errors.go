package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidationFailed   = errors.New("validation failed")
	ErrNetworkFailure     = errors.New("network failure")
	ErrUnknown            = errors.New("unknown error")
)

// ValidationError reports the first invalid field of a login or register
// request. An empty Field means the message applies to the request as a
// whole. It matches ErrValidationFailed under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidationFailed, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidationFailed, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
