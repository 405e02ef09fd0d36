package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/repository"
)

// CustomerHandler serves walk-in customers and their credit (khata) entries.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
	Branches  *repository.BranchRepo
}

func NewCustomerHandler(c *repository.CustomerRepo, b *repository.BranchRepo) *CustomerHandler {
	return &CustomerHandler{Customers: c, Branches: b}
}

type customerReq struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	BranchID uint64 `json:"branchId"`
}

type creditReq struct {
	Date        string   `json:"date"` // YYYY-MM-DD; defaults to today
	ProductIDs  []uint64 `json:"products"`
	TotalAmount float64  `json:"totalAmount"`
}

// Create handles POST /api/customers. The branch code is denormalized onto
// the customer at creation time.
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if req.Name == "" || req.Phone == "" || req.BranchID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name, phone and branchId are required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	branch, err := h.Branches.GetByID(ctx, req.BranchID)
	if err != nil {
		return crudError(c, err, "Branch not found", "")
	}

	cust := &model.Customer{
		Name:       req.Name,
		Phone:      req.Phone,
		City:       req.City,
		BranchID:   branch.ID,
		BranchCode: branch.Code,
	}
	if err := h.Customers.Create(ctx, cust); err != nil {
		return crudError(c, err, "Customer not found", "")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "customer": cust})
}

// Get handles GET /api/customers/:id.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return crudError(c, err, "Customer not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "customer": cust})
}

// ListByBranch handles GET /api/customers/branch/:id.
func (h *CustomerHandler) ListByBranch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	customers, err := h.Customers.ListByBranch(ctx, id)
	if err != nil {
		return crudError(c, err, "Customer not found", "")
	}
	if customers == nil {
		customers = []*model.Customer{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "customers": customers})
}

// AddCredit handles POST /api/customers/:id/credits.
func (h *CustomerHandler) AddCredit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req creditReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if req.TotalAmount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "totalAmount must be positive"})
	}

	date := time.Now().UTC()
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "date must be YYYY-MM-DD"})
		}
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	entry := &model.CreditEntry{
		CustomerID:  id,
		Date:        date,
		ProductIDs:  req.ProductIDs,
		TotalAmount: req.TotalAmount,
	}
	if err := h.Customers.AddCredit(ctx, entry); err != nil {
		return crudError(c, err, "Customer not found", "")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "credit": entry})
}

// ListCredits handles GET /api/customers/:id/credits.
func (h *CustomerHandler) ListCredits(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, id); err != nil {
		return crudError(c, err, "Customer not found", "")
	}
	credits, err := h.Customers.ListCredits(ctx, id)
	if err != nil {
		return crudError(c, err, "Customer not found", "")
	}
	if credits == nil {
		credits = []*model.CreditEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "credits": credits})
}
