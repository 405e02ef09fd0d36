package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/retail-backoffice/internal/model"
)

// ErrInsufficientStock is returned when an adjustment would take the
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryRepo tracks per-branch stock. The (product_id, branch_id) pair is
// unique, so writes go through an upsert.
type InventoryRepo struct{ DB *sql.DB }

func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{DB: db} }

const inventoryColumns = `id, product_id, branch_id, quantity, low_stock_threshold, is_active,
	created_at, updated_at`

func scanInventory(row interface{ Scan(...any) error }) (*model.Inventory, error) {
	inv := new(model.Inventory)
	err := row.Scan(&inv.ID, &inv.ProductID, &inv.BranchID, &inv.Quantity,
		&inv.LowStockThreshold, &inv.IsActive, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Upsert sets the absolute quantity (and threshold) for a product at a
// branch, creating the row if it does not exist.
func (r *InventoryRepo) Upsert(ctx context.Context, inv *model.Inventory) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO inventory (product_id, branch_id, quantity, low_stock_threshold, is_active)
		 VALUES (?,?,?,?,1)
		 ON DUPLICATE KEY UPDATE quantity=VALUES(quantity),
			low_stock_threshold=VALUES(low_stock_threshold), is_active=1`,
		inv.ProductID, inv.BranchID, inv.Quantity, inv.LowStockThreshold)
	if err != nil {
		return err
	}
	got, err := r.Get(ctx, inv.ProductID, inv.BranchID)
	if err != nil {
		return err
	}
	*inv = *got
	return nil
}

// Get fetches the inventory row for a product/branch pair.
func (r *InventoryRepo) Get(ctx context.Context, productID, branchID uint64) (*model.Inventory, error) {
	inv, err := scanInventory(r.DB.QueryRowContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE product_id=? AND branch_id=?",
		productID, branchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// Adjust applies a signed delta to the quantity. The guard in the WHERE
// clause keeps the quantity non-negative under concurrent adjustments; a
// zero-row update against an existing row means the delta would overdraw.
func (r *InventoryRepo) Adjust(ctx context.Context, productID, branchID uint64, delta int64) (*model.Inventory, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inventory SET quantity=quantity+? WHERE product_id=? AND branch_id=? AND quantity+? >= 0",
		delta, productID, branchID, delta)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.Get(ctx, productID, branchID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInsufficientStock
	}
	return r.Get(ctx, productID, branchID)
}

// ListByBranch returns all inventory rows for a branch ordered by product.
func (r *InventoryRepo) ListByBranch(ctx context.Context, branchID uint64) ([]*model.Inventory, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE branch_id=? ORDER BY product_id", branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInventory(rows)
}

// ListLowStock returns active rows at or below their low-stock threshold.
func (r *InventoryRepo) ListLowStock(ctx context.Context) ([]*model.Inventory, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE is_active=1 AND quantity <= low_stock_threshold ORDER BY branch_id, product_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInventory(rows)
}

func collectInventory(rows *sql.Rows) ([]*model.Inventory, error) {
	var out []*model.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
