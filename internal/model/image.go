package model

import "time"

// Image is an uploaded photo attached to exactly one of an item, a pickup
// protocol or a return protocol. OwnerID is the uploader and is independent
// of that attachment.
type Image struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"owner_id"`
	ItemID           *int64    `json:"item_id,omitempty"`
	PickupProtocolID *int64    `json:"pickup_protocol_id,omitempty"`
	ReturnProtocolID *int64    `json:"return_protocol_id,omitempty"`
	MIME             string    `json:"mime"`
	Data             []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`

	// Loaded parent (exactly one, matching the id above).
	Item           *Item           `json:"-"`
	PickupProtocol *PickupProtocol `json:"-"`
	ReturnProtocol *ReturnProtocol `json:"-"`
}
