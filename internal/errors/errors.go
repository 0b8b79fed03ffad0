// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// NotFoundMessage is the public 404 body for a missing record.
const NotFoundMessage = "Email not found"

// ErrEmailNotFound is returned when no record exists for the given id.
type ErrEmailNotFound struct {
	EmailID string
}

func (e *ErrEmailNotFound) Error() string {
	return fmt.Sprintf("email with ID %s not found", e.EmailID)
}

// Helper constructor
func NewEmailNotFound(id string) error {
	return &ErrEmailNotFound{EmailID: id}
}

// IsNotFound reports whether err (or anything it wraps) is an ErrEmailNotFound.
func IsNotFound(err error) bool {
	var nf *ErrEmailNotFound
	return errors.As(err, &nf)
}
