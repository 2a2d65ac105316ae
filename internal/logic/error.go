package logic

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrMissingActor      = errors.New("actor id is required")
	ErrMissingAction     = errors.New("action is required")
	ErrInvalidTargetType = errors.New("invalid target type")
	ErrActorNotFound     = errors.New("actor not found")
	ErrStoreFailure      = errors.New("audit store failure")
)

// validationError ties a specific validation failure to ErrValidation so callers can match either.
type validationError struct {
	cause error
}

func (e *validationError) Error() string { return e.cause.Error() }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func (e *validationError) Unwrap() error { return e.cause }

func newValidationError(cause error) error {
	return &validationError{cause: cause}
}
