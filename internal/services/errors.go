package services

import "errors"

var (
	// ErrValidation marks bad input shape or length. Wrapped with the detail.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateAccount is returned when the normalized email is already registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrProtectedAccount is returned for operations the owner account refuses.
	ErrProtectedAccount = errors.New("account is protected")
	// ErrInvalidCredentials is returned when no account matches the login pair.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("not found")
)
