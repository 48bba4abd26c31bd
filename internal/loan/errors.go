package loan

import (
	"errors"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

var (
	// ErrActionNotAllowed matches every *ActionNotAllowedError via errors.Is.
	ErrActionNotAllowed = errors.New("action not allowed")

	// ErrNotAParty is returned by Dispatch when the caller is neither the
	// loan's tenant nor its item's owner.
	ErrNotAParty = errors.New("caller is not a party to the loan")

	// ErrProtocolLocked is returned when a protocol is submitted while the
	// loan status does not allow editing it.
	ErrProtocolLocked = errors.New("protocol cannot be changed in the current loan status")
)

// ActionNotAllowedError is a rejected status change.
type ActionNotAllowedError struct {
	From  model.LoanStatus
	To    model.LoanStatus
	Actor Actor
}

func (e *ActionNotAllowedError) Error() string {
	return fmt.Sprintf("%s may not move loan from %s to %s", e.Actor, e.From, e.To)
}

// Is lets errors.Is(err, ErrActionNotAllowed) match.
func (e *ActionNotAllowedError) Is(target error) bool {
	return target == ErrActionNotAllowed
}
