// Package apperr holds the sentinel errors shared by the service and its
// transports. Wrap them with fmt.Errorf("...: %w", err) and test with
// errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound means the referenced lead, agent or property does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means a request failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition means a status change is not allowed by the pipeline.
	ErrInvalidTransition = errors.New("invalid status transition")
)
