package model

import "time"

// ItemStatus is the listing state of an item.
type ItemStatus string

// Item statuses. Only public items are visible to guests.
const (
	ItemStatusPublic    ItemStatus = "public"
	ItemStatusApproving ItemStatus = "approving"
	ItemStatusDenied    ItemStatus = "denied"
	ItemStatusDeleted   ItemStatus = "deleted"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPublic, ItemStatusApproving, ItemStatusDenied, ItemStatusDeleted:
		return true
	}
	return false
}

// Item represents a piece of equipment an owner offers for rent.
type Item struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	PricePerDay float64    `json:"price_per_day"`
	Status      ItemStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// ItemCategory groups items for browsing.
type ItemCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
