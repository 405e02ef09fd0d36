package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/repository"
)

// BranchHandler serves branch CRUD for admins and managers.
type BranchHandler struct {
	Branches *repository.BranchRepo
}

func NewBranchHandler(r *repository.BranchRepo) *BranchHandler { return &BranchHandler{Branches: r} }

type branchReq struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Pincode      string `json:"pincode"`
	ContactPhone string `json:"contactPhone"`
	ContactEmail string `json:"contactEmail"`
	GSTNumber    string `json:"gstNumber"`
	Status       string `json:"status"`
}

// pathID parses the :id path parameter shared by the CRUD handlers.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// crudError maps store-layer errors shared by the CRUD handlers.
func crudError(c echo.Context, err error, notFoundMsg, conflictMsg string) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": notFoundMsg})
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": conflictMsg})
	}
	c.Logger().Errorf("store: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
}

// Create handles POST /api/branches.
func (h *BranchHandler) Create(c echo.Context) error {
	var req branchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Name == "" || req.Code == "" || req.ContactPhone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name, code and contactPhone are required"})
	}
	status := req.Status
	if status == "" {
		status = model.BranchActive
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	b := &model.Branch{
		Name:         req.Name,
		Code:         req.Code,
		Street:       req.Street,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Pincode:      req.Pincode,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		GSTNumber:    req.GSTNumber,
		Status:       status,
	}
	if err := h.Branches.Create(ctx, b); err != nil {
		return crudError(c, err, "Branch not found", "Branch code already exists")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "branch": b})
}

// List handles GET /api/branches.
func (h *BranchHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	branches, err := h.Branches.List(ctx)
	if err != nil {
		return crudError(c, err, "Branch not found", "")
	}
	if branches == nil {
		branches = []*model.Branch{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "branches": branches})
}

// Get handles GET /api/branches/:id.
func (h *BranchHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Branches.GetByID(ctx, id)
	if err != nil {
		return crudError(c, err, "Branch not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "branch": b})
}

// Update handles PUT /api/branches/:id. The branch code is immutable.
func (h *BranchHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req branchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Branches.GetByID(ctx, id)
	if err != nil {
		return crudError(c, err, "Branch not found", "")
	}
	applyBranch(b, &req)
	if err := h.Branches.Update(ctx, b); err != nil {
		return crudError(c, err, "Branch not found", "")
	}
	b, err = h.Branches.GetByID(ctx, id)
	if err != nil {
		return crudError(c, err, "Branch not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "branch": b})
}

// Delete handles DELETE /api/branches/:id. Branches with inventory cannot be
// deleted; deactivate them instead.
func (h *BranchHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Branches.Delete(ctx, id); err != nil {
		return crudError(c, err, "Branch not found", "Branch has inventory and cannot be deleted")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Branch deleted"})
}

func applyBranch(b *model.Branch, req *branchReq) {
	if req.Name != "" {
		b.Name = req.Name
	}
	if req.Street != "" {
		b.Street = req.Street
	}
	if req.City != "" {
		b.City = req.City
	}
	if req.State != "" {
		b.State = req.State
	}
	if req.Country != "" {
		b.Country = req.Country
	}
	if req.Pincode != "" {
		b.Pincode = req.Pincode
	}
	if req.ContactPhone != "" {
		b.ContactPhone = req.ContactPhone
	}
	if req.ContactEmail != "" {
		b.ContactEmail = req.ContactEmail
	}
	if req.GSTNumber != "" {
		b.GSTNumber = req.GSTNumber
	}
	if req.Status != "" {
		b.Status = req.Status
	}
}
