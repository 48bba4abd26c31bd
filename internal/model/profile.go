package model

import "time"

// Profile is the public face of a user.
type Profile struct {
	UserID      int64        `json:"user_id"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Bio         string       `json:"bio,omitempty"`
	ImageID     *int64       `json:"image_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Stats       ProfileStats `json:"stats"`
}

// ProfileStats is aggregated by the store, never stored.
type ProfileStats struct {
	ItemsOwned    int     `json:"items_owned"`
	LoansAsTenant int     `json:"loans_as_tenant"`
	LoansAsOwner  int     `json:"loans_as_owner"`
	Reviews       int     `json:"reviews"`
	AverageRating float64 `json:"average_rating"`
}
