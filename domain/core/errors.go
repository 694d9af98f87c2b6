package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrQueryNotFound   = fmt.Errorf("%w: query", ErrNotFound)

	// Ingestion errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyTable        = errors.New("table has no data rows")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
	ErrBadEncoding       = errors.New("could not decode file with any supported encoding")

	// Query errors
	ErrQueryNotRecognized = errors.New("query not recognized")
	ErrLLMDisabled        = errors.New("language model features are disabled")
	ErrInvalidSpec        = errors.New("invalid query spec")
	ErrNonNumericColumn   = errors.New("operation requires a numeric column")
	ErrInsufficientData   = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

func NewSpecError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSpec, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsIngestionError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrBadEncoding)
}

func IsQueryError(err error) bool {
	return errors.Is(err, ErrQueryNotRecognized) ||
		errors.Is(err, ErrLLMDisabled) ||
		errors.Is(err, ErrInvalidSpec) ||
		errors.Is(err, ErrNonNumericColumn)
}
