package artifact

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName        = errors.New("artifact name is required")
	ErrInvalidWordCount = fmt.Errorf("word count must be between 1 and %d", MaxWordCount)
	ErrImageTooLarge    = errors.New("image is too large")
)

// ServiceError is the only failure the dispatcher reports. Message is safe
// to show to the user; Err keeps the underlying cause for logs.
type ServiceError struct {
	Message string
	Err     error
}

func NewServiceError(msg string, err error) *ServiceError {
	return &ServiceError{Message: msg, Err: err}
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }
