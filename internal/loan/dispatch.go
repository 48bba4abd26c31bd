package loan

import "github.com/erazemk/izposoja/internal/model"

// PartyOf returns which side of the loan userID is on. The item owner wins
// if the same user is somehow on both sides.
func PartyOf(l *model.Loan, userID int64) (Actor, bool) {
	switch {
	case userID != 0 && userID == l.OwnerID():
		return ActorOwner, true
	case userID != 0 && userID == l.TenantID:
		return ActorTenant, true
	}
	return "", false
}

// Dispatch applies a status change requested by userID, acting as whichever
// party that user is on the loan. It never decides legality itself.
func Dispatch(l *model.Loan, userID int64, to model.LoanStatus) error {
	actor, ok := PartyOf(l, userID)
	if !ok {
		return ErrNotAParty
	}
	return Apply(l, actor, to)
}
