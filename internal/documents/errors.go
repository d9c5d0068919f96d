package documents

import (
	"errors"

	"docchat-backend/internal/extract"
)

var (
	// ErrNotFound is returned when no matching document exists.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput is returned for missing or unusable upload input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateID is returned when a record id is already taken.
	ErrDuplicateID = errors.New("duplicate document id")
)

// ProcessingError reports a failed text extraction.
type ProcessingError struct {
	Format extract.Format
	Err    error
}

func (e *ProcessingError) Error() string {
	return e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
