package loan

import (
	"slices"

	"github.com/erazemk/izposoja/internal/model"
)

// Actor is the party requesting a status change.
type Actor string

// Actors.
const (
	ActorTenant Actor = "tenant"
	ActorOwner  Actor = "owner"
)

// Actors lists both parties.
var Actors = []Actor{ActorTenant, ActorOwner}

// transitions maps current status and actor to the statuses the actor may
// move the loan to. Statuses missing from the map, and actors missing from a
// status entry, allow nothing.
var transitions = map[model.LoanStatus]map[Actor][]model.LoanStatus{
	model.LoanStatusInquired: {
		ActorTenant: {model.LoanStatusCancelled},
		ActorOwner:  {model.LoanStatusAccepted, model.LoanStatusDenied},
	},
	model.LoanStatusAccepted: {
		ActorTenant: {model.LoanStatusCancelled},
		ActorOwner:  {model.LoanStatusCancelled, model.LoanStatusActive, model.LoanStatusPreparedForPickup},
	},
	model.LoanStatusPreparedForPickup: {
		ActorTenant: {model.LoanStatusCancelled, model.LoanStatusPickupDenied, model.LoanStatusActive},
		ActorOwner:  {model.LoanStatusCancelled},
	},
	model.LoanStatusPickupDenied: {
		ActorTenant: {model.LoanStatusCancelled},
		ActorOwner:  {model.LoanStatusCancelled, model.LoanStatusPreparedForPickup},
	},
	model.LoanStatusActive: {
		ActorOwner: {model.LoanStatusPreparedForReturn},
	},
	model.LoanStatusPreparedForReturn: {
		ActorTenant: {model.LoanStatusReturnDenied, model.LoanStatusReturned},
	},
	model.LoanStatusReturnDenied: {
		ActorTenant: {model.LoanStatusCancelled},
		ActorOwner:  {model.LoanStatusCancelled, model.LoanStatusPreparedForReturn},
	},
}

// preconditions must hold for a loan to enter the keyed status, whoever
// moves it there.
var preconditions = map[model.LoanStatus]func(*model.Loan) bool{
	model.LoanStatusPreparedForPickup: func(l *model.Loan) bool {
		return l.PickupProtocol != nil
	},
	model.LoanStatusPreparedForReturn: func(l *model.Loan) bool {
		return l.PickupProtocol != nil && l.ReturnProtocol != nil
	},
}

// Apply moves l to status to on behalf of actor, or returns an
// *ActionNotAllowedError and leaves l untouched.
func Apply(l *model.Loan, actor Actor, to model.LoanStatus) error {
	if to == l.Status {
		return nil
	}
	if !Allowed(l.Status, actor, to) {
		return &ActionNotAllowedError{From: l.Status, To: to, Actor: actor}
	}
	if pre, ok := preconditions[to]; ok && !pre(l) {
		return &ActionNotAllowedError{From: l.Status, To: to, Actor: actor}
	}
	l.Status = to
	return nil
}

// Allowed reports whether the table lets actor move a loan from one status to
// another, ignoring preconditions.
func Allowed(from model.LoanStatus, actor Actor, to model.LoanStatus) bool {
	return slices.Contains(transitions[from][actor], to)
}

// Targets returns the statuses actor may request from status from.
func Targets(from model.LoanStatus, actor Actor) []model.LoanStatus {
	return slices.Clone(transitions[from][actor])
}

// Terminal reports whether no party can move a loan out of status s.
func Terminal(s model.LoanStatus) bool {
	for _, targets := range transitions[s] {
		if len(targets) > 0 {
			return false
		}
	}
	return true
}
