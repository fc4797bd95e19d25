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

	// Table and column errors
	ErrInvalidTable           = errors.New("invalid table")
	ErrEmptyColumn            = errors.New("column has no non-missing values")
	ErrNoNumericColumns       = errors.New("no analyzable numeric columns")
	ErrInvalidColumnReference = errors.New("column not found")
	ErrDegenerateVariance     = errors.New("column has zero variance")

	// Request errors
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// NewColumnReferenceError reports a column name that is absent from the table.
func NewColumnReferenceError(column string) error {
	return fmt.Errorf("%w: %q", ErrInvalidColumnReference, column)
}

// NewParameterError reports a request parameter that cannot be honoured.
func NewParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, reason)
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRequestError reports whether err is a caller contract violation.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrInvalidColumnReference) ||
		errors.Is(err, ErrInvalidParameter)
}
