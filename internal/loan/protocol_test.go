package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erazemk/izposoja/internal/model"
)

func TestProtocolEligibility(t *testing.T) {
	for _, s := range model.LoanStatuses {
		wantPickup := s == model.LoanStatusAccepted || s == model.LoanStatusPickupDenied
		wantReturn := s == model.LoanStatusActive || s == model.LoanStatusReturnDenied

		assert.Equal(t, wantPickup, CanEditPickupProtocol(s), "pickup in %s", s)
		assert.Equal(t, wantReturn, CanEditReturnProtocol(s), "return in %s", s)
	}
}

func TestAttachProtocols(t *testing.T) {
	l := newLoan(model.LoanStatusAccepted, false, false)
	p := &model.PickupProtocol{Description: "ok"}

	assert.NoError(t, AttachPickupProtocol(l, p))
	assert.Same(t, p, l.PickupProtocol)
	assert.Same(t, l, p.Loan)
	assert.Equal(t, l.ID, p.LoanID)

	assert.ErrorIs(t, AttachReturnProtocol(l, &model.ReturnProtocol{}), ErrProtocolLocked)
	assert.Nil(t, l.ReturnProtocol)

	l.Status = model.LoanStatusReturnDenied
	r := &model.ReturnProtocol{}
	assert.NoError(t, AttachReturnProtocol(l, r))
	assert.Same(t, r, l.ReturnProtocol)
}
