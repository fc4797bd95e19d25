package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ParseID parses a dataset reference. UUIDs are normalized to their canonical
// lowercase form; any other non-empty token is accepted verbatim so directory
// catalogs can address files by name.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: dataset ID cannot be empty", ErrInvalidParameter)
	}
	if parsed, err := uuid.Parse(s); err == nil {
		return ID(parsed.String()), nil
	}
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return "", fmt.Errorf("%w: dataset ID %q contains a path separator", ErrInvalidParameter, s)
	}
	return ID(s), nil
}
