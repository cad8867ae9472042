package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure kind the API exposes. Services return these
// (possibly wrapped) and handlers map them to HTTP status codes via errors.Is.
var (
	// ErrNotFound covers both a missing entity and an entity owned by another
	// account. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike, to avoid account enumeration on login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrDuplicateAccount = errors.New("email is already registered")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrValidation       = errors.New("validation failed")
)

// Validationf wraps ErrValidation with a field-level detail message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
