package model

import "time"

// Account types and statuses. Each branch keeps one account per payment
// channel it accepts.
const (
	AccountUPI  = "Upi"
	AccountCash = "Cash"

	AccountActive   = "Active"
	AccountInactive = "Inactive"
	AccountClosed   = "Closed"
)

// Account represents a branch money account in the `accounts` table.
type Account struct {
	ID        uint64    `json:"id"`
	Type      string    `json:"type"`
	BranchID  uint64    `json:"branchId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BalanceEntry is a daily opening/closing snapshot for an account.
type BalanceEntry struct {
	ID             uint64    `json:"id"`
	AccountID      uint64    `json:"accountId"`
	Date           time.Time `json:"date"`
	OpeningBalance float64   `json:"openingBalance"`
	ClosingBalance float64   `json:"closingBalance"`
}
