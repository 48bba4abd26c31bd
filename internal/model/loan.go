package model

import "time"

// LoanStatus is a node of the loan lifecycle.
type LoanStatus string

// Loan statuses.
const (
	LoanStatusInquired          LoanStatus = "inquired"
	LoanStatusAccepted          LoanStatus = "accepted"
	LoanStatusDenied            LoanStatus = "denied"
	LoanStatusCancelled         LoanStatus = "cancelled"
	LoanStatusPreparedForPickup LoanStatus = "prepared_for_pickup"
	LoanStatusPickupDenied      LoanStatus = "pickup_denied"
	LoanStatusActive            LoanStatus = "active"
	LoanStatusPreparedForReturn LoanStatus = "prepared_for_return"
	LoanStatusReturnDenied      LoanStatus = "return_denied"
	LoanStatusReturned          LoanStatus = "returned"
)

// LoanStatuses lists every loan status in lifecycle order.
var LoanStatuses = []LoanStatus{
	LoanStatusInquired,
	LoanStatusAccepted,
	LoanStatusDenied,
	LoanStatusCancelled,
	LoanStatusPreparedForPickup,
	LoanStatusPickupDenied,
	LoanStatusActive,
	LoanStatusPreparedForReturn,
	LoanStatusReturnDenied,
	LoanStatusReturned,
}

// Valid reports whether s is a known loan status.
func (s LoanStatus) Valid() bool {
	for _, v := range LoanStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Loan is one rental agreement between a tenant and an item owner.
//
// Status must only be changed through the loan package; the store persists
// whatever the transition produced, guarded by Version.
type Loan struct {
	ID        int64      `json:"id"`
	ItemID    int64      `json:"item_id"`
	TenantID  int64      `json:"tenant_id"`
	Status    LoanStatus `json:"status"`
	From      time.Time  `json:"from"`
	To        time.Time  `json:"to"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Loaded relationships (not always populated).
	Item           *Item           `json:"item,omitempty"`
	PickupProtocol *PickupProtocol `json:"pickup_protocol,omitempty"`
	ReturnProtocol *ReturnProtocol `json:"return_protocol,omitempty"`
	Reviews        []Review        `json:"reviews,omitempty"`
}

// OwnerID returns the id of the lending owner, or 0 if the item is not loaded.
func (l *Loan) OwnerID() int64 {
	if l.Item == nil {
		return 0
	}
	return l.Item.OwnerID
}
