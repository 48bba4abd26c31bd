package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means no voter granted and there is no identity.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden means no voter granted the authenticated identity.
	ErrForbidden = errors.New("forbidden")

	// ErrUnsupportedOperation is the panic value for an operation with no
	// registered voters. It is a wiring defect, not a runtime condition.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// DeniedError records which operation was refused. Err is
// ErrNotAuthenticated or ErrForbidden.
type DeniedError struct {
	Operation Operation
	Err       error
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *DeniedError) Unwrap() error {
	return e.Err
}
