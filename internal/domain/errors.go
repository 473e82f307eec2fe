package domain

import "errors"

var (
	// ErrInvalidInput is matched by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyInput    = &ValidationError{Reason: "URL cannot be empty"}
	ErrTooLong       = &ValidationError{Reason: "URL too long"}
	ErrMalformedURL  = &ValidationError{Reason: "Invalid URL format"}
	ErrMissingCode   = &ValidationError{Reason: "Short code not provided"}
	ErrMalformedCode = &ValidationError{Reason: "Invalid short code format"}
)

var (
	ErrNotFound           = errors.New("short code not found")
	ErrDuplicateKey       = errors.New("short code already exists")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrCodeSpaceExhausted = errors.New("no free short code after max attempts")
)

// ValidationError is a caller-caused input error. Its Reason is safe to show
// to clients.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
