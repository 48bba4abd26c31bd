package loan

import "github.com/erazemk/izposoja/internal/model"

// CanEditPickupProtocol reports whether a pickup protocol may be created or
// updated while the loan is in status s.
func CanEditPickupProtocol(s model.LoanStatus) bool {
	return s == model.LoanStatusAccepted || s == model.LoanStatusPickupDenied
}

// CanEditReturnProtocol reports whether a return protocol may be created or
// updated while the loan is in status s.
func CanEditReturnProtocol(s model.LoanStatus) bool {
	return s == model.LoanStatusActive || s == model.LoanStatusReturnDenied
}

// AttachPickupProtocol links p to l. It fails with ErrProtocolLocked when the
// loan status does not allow pickup protocol changes.
func AttachPickupProtocol(l *model.Loan, p *model.PickupProtocol) error {
	if !CanEditPickupProtocol(l.Status) {
		return ErrProtocolLocked
	}
	p.LoanID = l.ID
	p.Loan = l
	l.PickupProtocol = p
	return nil
}

// AttachReturnProtocol links p to l. It fails with ErrProtocolLocked when the
// loan status does not allow return protocol changes.
func AttachReturnProtocol(l *model.Loan, p *model.ReturnProtocol) error {
	if !CanEditReturnProtocol(l.Status) {
		return ErrProtocolLocked
	}
	p.LoanID = l.ID
	p.Loan = l
	l.ReturnProtocol = p
	return nil
}
