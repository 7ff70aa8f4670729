package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that an account or transaction does not exist.
// Stores return it for point lookups; it is distinguishable from backend
// failures so handlers can map it to a 404 instead of a 500.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists reports an insert conflicting with an existing row.
var ErrAlreadyExists = errors.New("already exists")

// ValidationError reports a missing or malformed request field. Nothing is
// persisted when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
