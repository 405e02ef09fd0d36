package model

import "time"

// Customer is a walk-in customer tracked per branch, mainly so credit sales
// (khata entries) can be recorded against them. BranchCode is denormalized
// from the branch for quick report filtering, as in the upstream schema.
type Customer struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	City       string    `json:"city,omitempty"`
	BranchID   uint64    `json:"branchId"`
	BranchCode string    `json:"branchCode"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreditEntry is one credit sale recorded against a customer. ProductIDs
// lists the products included in the sale; TotalAmount is the owed amount.
type CreditEntry struct {
	ID          uint64    `json:"id"`
	CustomerID  uint64    `json:"customerId"`
	Date        time.Time `json:"date"`
	ProductIDs  []uint64  `json:"products"`
	TotalAmount float64   `json:"totalAmount"`
}
