package model

import "time"

// Branch statuses. A branch is soft-disabled by setting StatusInactive.
const (
	BranchActive   = "Active"
	BranchInactive = "Inactive"
)

// Branch represents a retail branch (store location) in the `branches` table.
// The Code field is a unique uppercase short code (e.g. "BLR01") referenced
// by customers and inventory.
type Branch struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Street       string    `json:"street,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	Pincode      string    `json:"pincode,omitempty"`
	ContactPhone string    `json:"contactPhone"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	GSTNumber    string    `json:"gstNumber,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
