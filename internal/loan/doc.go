// Package loan implements the loan lifecycle.
//
// Every status change of a model.Loan goes through Apply (or Dispatch, which
// derives the acting party from the caller). The allowed moves live in a
// single table keyed by current status and acting party; a move is applied
// only when the target is on the party's allow-list and the target's
// precondition holds. Requesting the current status is always a no-op
// success.
//
// The package is pure apart from mutating the loan it is given. It does not
// persist, log or authorize; callers authorize Loan.Update first and store
// the result under an optimistic version check.
package loan
