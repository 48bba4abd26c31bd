package loan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/erazemk/izposoja/internal/model"
)

const (
	ownerID  int64 = 10
	tenantID int64 = 20
)

func newLoan(status model.LoanStatus, pickup, ret bool) *model.Loan {
	l := &model.Loan{
		ID:       1,
		ItemID:   5,
		TenantID: tenantID,
		Status:   status,
		Item:     &model.Item{ID: 5, OwnerID: ownerID, Status: model.ItemStatusPublic},
	}
	if pickup {
		l.PickupProtocol = &model.PickupProtocol{ID: 1, LoanID: l.ID}
	}
	if ret {
		l.ReturnProtocol = &model.ReturnProtocol{ID: 1, LoanID: l.ID}
	}
	return l
}

// allowList mirrors the lifecycle table row by row.
var allowList = map[model.LoanStatus]map[Actor][]model.LoanStatus{
	model.LoanStatusInquired: {
		ActorTenant: {model.LoanStatusCancelled},
		ActorOwner:  {model.LoanStatusAccepted, model.LoanStatusDenied},
	},
	model.LoanStatusAccepted: {
		ActorTenant: {model.LoanStatusCancelled},
		ActorOwner:  {model.LoanStatusCancelled, model.LoanStatusActive, model.LoanStatusPreparedForPickup},
	},
	model.LoanStatusDenied:    {},
	model.LoanStatusCancelled: {},
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
	model.LoanStatusReturned: {},
}

func listed(from model.LoanStatus, actor Actor, to model.LoanStatus) bool {
	for _, s := range allowList[from][actor] {
		if s == to {
			return true
		}
	}
	return false
}

func TestApply_Table(t *testing.T) {
	for _, from := range model.LoanStatuses {
		for _, actor := range Actors {
			for _, to := range model.LoanStatuses {
				if from == to {
					continue
				}
				l := newLoan(from, true, true)
				err := Apply(l, actor, to)

				if listed(from, actor, to) {
					assert.NoError(t, err, "%s: %s -> %s", actor, from, to)
					assert.Equal(t, to, l.Status)
					continue
				}

				var nae *ActionNotAllowedError
				if assert.ErrorAs(t, err, &nae, "%s: %s -> %s", actor, from, to) {
					assert.Equal(t, from, nae.From)
					assert.Equal(t, to, nae.To)
					assert.Equal(t, actor, nae.Actor)
				}
				assert.ErrorIs(t, err, ErrActionNotAllowed)
				assert.Equal(t, from, l.Status, "status must not change on rejection")
			}
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	for _, s := range model.LoanStatuses {
		for _, actor := range Actors {
			l := newLoan(s, false, false)
			require.NoError(t, Apply(l, actor, s))
			assert.Equal(t, s, l.Status)
		}
	}
}

func TestApply_TerminalClosure(t *testing.T) {
	for _, s := range []model.LoanStatus{model.LoanStatusDenied, model.LoanStatusCancelled, model.LoanStatusReturned} {
		assert.True(t, Terminal(s), "%s should be terminal", s)
		for _, actor := range Actors {
			for _, to := range model.LoanStatuses {
				if to == s {
					continue
				}
				l := newLoan(s, true, true)
				assert.ErrorIs(t, Apply(l, actor, to), ErrActionNotAllowed)
			}
		}
	}
	assert.False(t, Terminal(model.LoanStatusActive))
}

func TestApply_PickupPrecondition(t *testing.T) {
	l := newLoan(model.LoanStatusAccepted, false, false)

	err := Apply(l, ActorOwner, model.LoanStatusPreparedForPickup)
	require.ErrorIs(t, err, ErrActionNotAllowed)
	assert.Equal(t, model.LoanStatusAccepted, l.Status)

	require.NoError(t, AttachPickupProtocol(l, &model.PickupProtocol{Description: "scratched lid"}))
	require.NoError(t, Apply(l, ActorOwner, model.LoanStatusPreparedForPickup))
	assert.Equal(t, model.LoanStatusPreparedForPickup, l.Status)
}

func TestApply_PickupPreconditionFromPickupDenied(t *testing.T) {
	l := newLoan(model.LoanStatusPickupDenied, false, false)
	assert.ErrorIs(t, Apply(l, ActorOwner, model.LoanStatusPreparedForPickup), ErrActionNotAllowed)

	l.PickupProtocol = &model.PickupProtocol{}
	assert.NoError(t, Apply(l, ActorOwner, model.LoanStatusPreparedForPickup))
}

func TestApply_ReturnPreconditionNeedsBothProtocols(t *testing.T) {
	tests := []struct {
		name   string
		pickup bool
		ret    bool
		ok     bool
	}{
		{"neither", false, false, false},
		{"pickup only", true, false, false},
		{"return only", false, true, false},
		{"both", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, from := range []model.LoanStatus{model.LoanStatusActive, model.LoanStatusReturnDenied} {
				l := newLoan(from, tt.pickup, tt.ret)
				err := Apply(l, ActorOwner, model.LoanStatusPreparedForReturn)
				if tt.ok {
					assert.NoError(t, err)
					assert.Equal(t, model.LoanStatusPreparedForReturn, l.Status)
				} else {
					assert.ErrorIs(t, err, ErrActionNotAllowed)
					assert.Equal(t, from, l.Status)
				}
			}
		})
	}
}

func TestScenarios(t *testing.T) {
	t.Run("inquired tenant cancels", func(t *testing.T) {
		l := newLoan(model.LoanStatusInquired, false, false)
		require.NoError(t, Dispatch(l, tenantID, model.LoanStatusCancelled))
		assert.Equal(t, model.LoanStatusCancelled, l.Status)
	})

	t.Run("inquired owner cannot prepare pickup", func(t *testing.T) {
		l := newLoan(model.LoanStatusInquired, true, false)
		assert.ErrorIs(t, Dispatch(l, ownerID, model.LoanStatusPreparedForPickup), ErrActionNotAllowed)
		assert.Equal(t, model.LoanStatusInquired, l.Status)
	})

	t.Run("accepted owner prepares pickup after attaching protocol", func(t *testing.T) {
		l := newLoan(model.LoanStatusAccepted, false, false)
		assert.ErrorIs(t, Dispatch(l, ownerID, model.LoanStatusPreparedForPickup), ErrActionNotAllowed)

		require.NoError(t, AttachPickupProtocol(l, &model.PickupProtocol{}))
		require.NoError(t, Dispatch(l, ownerID, model.LoanStatusPreparedForPickup))
		assert.Equal(t, model.LoanStatusPreparedForPickup, l.Status)
	})

	t.Run("active owner cannot skip to returned", func(t *testing.T) {
		l := newLoan(model.LoanStatusActive, true, false)
		assert.ErrorIs(t, Dispatch(l, ownerID, model.LoanStatusReturned), ErrActionNotAllowed)
		assert.Equal(t, model.LoanStatusActive, l.Status)
	})
}

func TestFullLifecycle(t *testing.T) {
	l := newLoan(model.LoanStatusInquired, false, false)

	steps := []struct {
		user int64
		to   model.LoanStatus
	}{
		{ownerID, model.LoanStatusAccepted},
		{ownerID, model.LoanStatusPreparedForPickup}, // fails, no protocol yet
		{tenantID, model.LoanStatusPickupDenied},      // fails, not prepared
	}
	require.NoError(t, Dispatch(l, steps[0].user, steps[0].to))
	require.Error(t, Dispatch(l, steps[1].user, steps[1].to))
	require.Error(t, Dispatch(l, steps[2].user, steps[2].to))

	require.NoError(t, AttachPickupProtocol(l, &model.PickupProtocol{AcceptedRefundableDeposit: 50}))
	require.NoError(t, Dispatch(l, ownerID, model.LoanStatusPreparedForPickup))
	require.NoError(t, Dispatch(l, tenantID, model.LoanStatusPickupDenied))
	require.NoError(t, Dispatch(l, ownerID, model.LoanStatusPreparedForPickup))
	require.NoError(t, Dispatch(l, tenantID, model.LoanStatusActive))

	require.ErrorIs(t, AttachPickupProtocol(l, &model.PickupProtocol{}), ErrProtocolLocked)
	require.NoError(t, AttachReturnProtocol(l, &model.ReturnProtocol{ReturnedRefundableDeposit: 50}))
	require.NoError(t, Dispatch(l, ownerID, model.LoanStatusPreparedForReturn))
	require.NoError(t, Dispatch(l, tenantID, model.LoanStatusReturned))
	assert.True(t, Terminal(l.Status))
}

func TestApply_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(model.LoanStatuses).Draw(t, "from")
		to := rapid.SampledFrom(model.LoanStatuses).Draw(t, "to")
		actor := rapid.SampledFrom(Actors).Draw(t, "actor")
		pickup := rapid.Bool().Draw(t, "pickup")
		ret := rapid.Bool().Draw(t, "return")

		l := newLoan(from, pickup, ret)
		err := Apply(l, actor, to)

		if from == to {
			if err != nil {
				t.Fatalf("resubmitting %s failed: %v", from, err)
			}
			return
		}

		want := listed(from, actor, to)
		switch to {
		case model.LoanStatusPreparedForPickup:
			want = want && pickup
		case model.LoanStatusPreparedForReturn:
			want = want && pickup && ret
		}

		if want {
			if err != nil || l.Status != to {
				t.Fatalf("%s: %s -> %s rejected: %v", actor, from, to, err)
			}
			return
		}
		if !errors.Is(err, ErrActionNotAllowed) {
			t.Fatalf("%s: %s -> %s: expected ActionNotAllowed, got %v", actor, from, to, err)
		}
		if l.Status != from {
			t.Fatalf("status changed on rejection: %s", l.Status)
		}
	})
}
