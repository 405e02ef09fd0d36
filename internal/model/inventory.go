package model

import "time"

// Inventory tracks the stock of one product at one branch. The
// (ProductID, BranchID) pair is unique in the `inventory` table. Quantity
// never goes negative; adjustments that would cross zero are rejected.
type Inventory struct {
	ID                uint64    `json:"id"`
	ProductID         uint64    `json:"productId"`
	BranchID          uint64    `json:"branchId"`
	Quantity          int64     `json:"quantity"`
	LowStockThreshold int64     `json:"lowStockThreshold"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
