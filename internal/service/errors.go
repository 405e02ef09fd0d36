package service

import (
	"errors"
	"fmt"
)

// Authentication failures exposed by the session manager. They are
// deliberately coarse-grained: a bad password and an unknown identifier
// produce the same error, and every stored-state refresh failure collapses
// into ErrInvalidToken, so callers cannot enumerate accounts or probe which
// check failed. Duplicate-field conflicts reuse the model sentinels
// (model.ErrEmailExists, model.ErrPhoneExists).
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account deactivated")
	ErrMissingToken       = errors.New("refresh token required")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError reports a malformed or missing input field with the
// message shown to the client. Checked with errors.As.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
