package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/queue"
	"github.com/iliyamo/retail-backoffice/internal/repository"
)

// InventoryHandler serves per-branch stock levels. Adjustments that land a
// product at or below its low-stock threshold publish an alert event to the
// broker; publishing is best-effort and never fails the request.
type InventoryHandler struct {
	Inventory *repository.InventoryRepo
	Products  *repository.ProductRepo
	Branches  *repository.BranchRepo
}

func NewInventoryHandler(inv *repository.InventoryRepo, p *repository.ProductRepo, b *repository.BranchRepo) *InventoryHandler {
	return &InventoryHandler{Inventory: inv, Products: p, Branches: b}
}

type inventorySetReq struct {
	ProductID         uint64 `json:"productId"`
	BranchID          uint64 `json:"branchId"`
	Quantity          int64  `json:"quantity"`
	LowStockThreshold int64  `json:"lowStockThreshold"`
}

type inventoryAdjustReq struct {
	ProductID uint64 `json:"productId"`
	BranchID  uint64 `json:"branchId"`
	Delta     int64  `json:"delta"`
}

// Set handles PUT /api/inventory: sets the absolute quantity and threshold
// for a product at a branch, creating the row if needed.
func (h *InventoryHandler) Set(c echo.Context) error {
	var req inventorySetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if req.ProductID == 0 || req.BranchID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "productId and branchId are required"})
	}
	if req.Quantity < 0 || req.LowStockThreshold < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "quantity and lowStockThreshold must not be negative"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	// Reject references to unknown products or branches up front; the
	// inventory table has no foreign keys toward soft-deleted rows.
	if _, err := h.Products.GetByID(ctx, req.ProductID); err != nil {
		return crudError(c, err, "Product not found", "")
	}
	if _, err := h.Branches.GetByID(ctx, req.BranchID); err != nil {
		return crudError(c, err, "Branch not found", "")
	}

	inv := &model.Inventory{
		ProductID:         req.ProductID,
		BranchID:          req.BranchID,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	}
	if err := h.Inventory.Upsert(ctx, inv); err != nil {
		return crudError(c, err, "Inventory not found", "")
	}
	h.maybeAlert(c, inv)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "inventory": inv})
}

// Adjust handles POST /api/inventory/adjust: applies a signed delta to the
// stock of a product at a branch. Overdrawing is rejected with a 409.
func (h *InventoryHandler) Adjust(c echo.Context) error {
	var req inventoryAdjustReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if req.ProductID == 0 || req.BranchID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "productId and branchId are required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	inv, err := h.Inventory.Adjust(ctx, req.ProductID, req.BranchID, req.Delta)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "Insufficient stock"})
		}
		return crudError(c, err, "Inventory not found", "")
	}
	h.maybeAlert(c, inv)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "inventory": inv})
}

// ListByBranch handles GET /api/inventory/branch/:id.
func (h *InventoryHandler) ListByBranch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Inventory.ListByBranch(ctx, id)
	if err != nil {
		return crudError(c, err, "Inventory not found", "")
	}
	if items == nil {
		items = []*model.Inventory{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "inventory": items})
}

// ListLowStock handles GET /api/inventory/low-stock: every active row at or
// below its threshold, across all branches.
func (h *InventoryHandler) ListLowStock(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Inventory.ListLowStock(ctx)
	if err != nil {
		return crudError(c, err, "Inventory not found", "")
	}
	if items == nil {
		items = []*model.Inventory{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "inventory": items})
}

// maybeAlert publishes a stock alert when the row sits at or below its
// threshold. Failures are logged only.
func (h *InventoryHandler) maybeAlert(c echo.Context, inv *model.Inventory) {
	if inv.Quantity > inv.LowStockThreshold {
		return
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	event := queue.StockAlertEvent{
		EventID:    uuid.NewString(),
		ProductID:  inv.ProductID,
		BranchID:   inv.BranchID,
		Quantity:   inv.Quantity,
		Threshold:  inv.LowStockThreshold,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if p, err := h.Products.GetByID(ctx, inv.ProductID); err == nil {
		event.SKU = p.SKU
	}
	if b, err := h.Branches.GetByID(ctx, inv.BranchID); err == nil {
		event.BranchCode = b.Code
	}
	if err := queue.PublishStockAlert(ctx, event); err != nil {
		c.Logger().Warnf("stock alert publish failed for product=%d branch=%d: %v",
			inv.ProductID, inv.BranchID, err)
	}
}
