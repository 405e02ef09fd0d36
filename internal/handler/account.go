package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/repository"
)

// AccountHandler serves branch money accounts and their daily balance
// snapshots.
type AccountHandler struct {
	Accounts *repository.AccountRepo
	Branches *repository.BranchRepo
}

func NewAccountHandler(a *repository.AccountRepo, b *repository.BranchRepo) *AccountHandler {
	return &AccountHandler{Accounts: a, Branches: b}
}

type accountReq struct {
	Type     string `json:"type"`
	BranchID uint64 `json:"branchId"`
	Status   string `json:"status"`
}

type balanceReq struct {
	Date           string  `json:"date"` // YYYY-MM-DD; defaults to today
	OpeningBalance float64 `json:"openingBalance"`
	ClosingBalance float64 `json:"closingBalance"`
}

// Create handles POST /api/accounts. Each branch keeps at most one account
// per payment type.
func (h *AccountHandler) Create(c echo.Context) error {
	var req accountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if req.BranchID == 0 || (req.Type != model.AccountUPI && req.Type != model.AccountCash) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "branchId and a valid type (Upi or Cash) are required"})
	}
	status := req.Status
	if status == "" {
		status = model.AccountActive
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Branches.GetByID(ctx, req.BranchID); err != nil {
		return crudError(c, err, "Branch not found", "")
	}

	acct := &model.Account{Type: req.Type, BranchID: req.BranchID, Status: status}
	if err := h.Accounts.Create(ctx, acct); err != nil {
		return crudError(c, err, "Account not found", "Account of this type already exists for the branch")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "account": acct})
}

// Get handles GET /api/accounts/:id.
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	acct, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		return crudError(c, err, "Account not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "account": acct})
}

// ListByBranch handles GET /api/accounts/branch/:id.
func (h *AccountHandler) ListByBranch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	accounts, err := h.Accounts.ListByBranch(ctx, id)
	if err != nil {
		return crudError(c, err, "Account not found", "")
	}
	if accounts == nil {
		accounts = []*model.Account{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "accounts": accounts})
}

// AddBalance handles POST /api/accounts/:id/balances.
func (h *AccountHandler) AddBalance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req balanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
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

	entry := &model.BalanceEntry{
		AccountID:      id,
		Date:           date,
		OpeningBalance: req.OpeningBalance,
		ClosingBalance: req.ClosingBalance,
	}
	if err := h.Accounts.AddBalance(ctx, entry); err != nil {
		return crudError(c, err, "Account not found", "")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "balance": entry})
}

// ListBalances handles GET /api/accounts/:id/balances.
func (h *AccountHandler) ListBalances(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Accounts.GetByID(ctx, id); err != nil {
		return crudError(c, err, "Account not found", "")
	}
	balances, err := h.Accounts.ListBalances(ctx, id)
	if err != nil {
		return crudError(c, err, "Account not found", "")
	}
	if balances == nil {
		balances = []*model.BalanceEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "balances": balances})
}
