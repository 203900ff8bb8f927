package apperrors

import "errors"

// Sentinel error kinds. Services classify every failure into one of these;
// handlers match with errors.Is and never see raw collaborator errors.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrExpiredCredential = errors.New("expired credential")
	ErrProvider          = errors.New("provider error")
)

// Error pairs a user-visible message with one of the sentinel kinds.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func Unauthorized(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func ExpiredCredential(message string) error {
	return &Error{Kind: ErrExpiredCredential, Message: message}
}

func Provider(message string) error {
	return &Error{Kind: ErrProvider, Message: message}
}
