package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the session store backends
var (
	ErrStoreUnavailable = errors.New("session store unavailable")
	ErrStoreCorrupt     = errors.New("session store corrupt")
	ErrMissingAccess    = errors.New("access token is required")
	ErrUnknownKey       = errors.New("unknown session key")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps err so that it matches both kind and the original cause.
func Join(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
