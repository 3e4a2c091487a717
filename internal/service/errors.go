package service

import "errors"

var (
	// ErrValidation wraps input problems; nothing was changed
	ErrValidation = errors.New("validation failed")
	// ErrRemote wraps transaction store failures. Under the eager policy the
	// local change has already been applied when this is returned.
	ErrRemote = errors.New("transaction store failed")
	// ErrRegistrationDisabled is returned when no account manager is configured
	ErrRegistrationDisabled = errors.New("registration is not available")
)
