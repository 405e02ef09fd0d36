// Package queue defines the stock-alert events exchanged over the message
// broker, plus their publisher and the background consumer.
package queue

// StockAlertEvent is published when an inventory adjustment leaves a
// product at or below its low-stock threshold. It carries enough context
// for downstream consumers (reorder tooling, notifications) without
// querying the primary database.
type StockAlertEvent struct {
	EventID    string `json:"event_id"`
	ProductID  uint64 `json:"product_id"`
	SKU        string `json:"sku"`
	BranchID   uint64 `json:"branch_id"`
	BranchCode string `json:"branch_code"`
	Quantity   int64  `json:"quantity"`
	Threshold  int64  `json:"threshold"`
	OccurredAt string `json:"occurred_at"`
}
