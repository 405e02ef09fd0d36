package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/repository"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(r *repository.ProductRepo) *ProductHandler { return &ProductHandler{Products: r} }

type productReq struct {
	Name         string   `json:"name"`
	SKU          string   `json:"sku"`
	Category     string   `json:"category"`
	SubCategory  string   `json:"subCategory"`
	Unit         string   `json:"unit"`
	GSTType      string   `json:"gstType"`
	CGST         *float64 `json:"cgst"`
	SGST         *float64 `json:"sgst"`
	TaxCodeType  string   `json:"taxCodeType"`
	TaxCode      string   `json:"taxCode"`
	CostPrice    *float64 `json:"costPrice"`
	MRP          *float64 `json:"mrp"`
	SellingPrice *float64 `json:"sellingPrice"`
	IsActive     *bool    `json:"isActive"`
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.SKU = strings.TrimSpace(req.SKU)
	if req.Name == "" || req.SKU == "" || req.Category == "" || req.Unit == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name, sku, category and unit are required"})
	}
	gstType := req.GSTType
	if gstType == "" {
		gstType = model.GSTNotApplicable
	}

	p := &model.Product{
		Name:        req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Unit:        req.Unit,
		GSTType:     gstType,
		TaxCodeType: req.TaxCodeType,
		TaxCode:     req.TaxCode,
		IsActive:    true,
	}
	if req.CGST != nil {
		p.CGST = *req.CGST
	}
	if req.SGST != nil {
		p.SGST = *req.SGST
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.MRP != nil {
		p.MRP = *req.MRP
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Products.Create(ctx, p); err != nil {
		return crudError(c, err, "Product not found", "SKU already exists")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "product": p})
}

// List handles GET /api/products. ?active=true filters out disabled
// products.
func (h *ProductHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"

	ctx, cancel := reqContext(c)
	defer cancel()

	products, err := h.Products.List(ctx, activeOnly)
	if err != nil {
		return crudError(c, err, "Product not found", "")
	}
	if products == nil {
		products = []*model.Product{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": products})
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return crudError(c, err, "Product not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": p})
}

// Update handles PUT /api/products/:id. SKU is immutable.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return crudError(c, err, "Product not found", "")
	}
	applyProduct(p, &req)
	if err := h.Products.Update(ctx, p); err != nil {
		return crudError(c, err, "Product not found", "")
	}
	p, err = h.Products.GetByID(ctx, id)
	if err != nil {
		return crudError(c, err, "Product not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": p})
}

// Delete handles DELETE /api/products/:id. Products with inventory rows
// cannot be deleted; deactivate them instead.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		return crudError(c, err, "Product not found", "Product has inventory and cannot be deleted")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product deleted"})
}

func applyProduct(p *model.Product, req *productReq) {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.SubCategory != "" {
		p.SubCategory = req.SubCategory
	}
	if req.Unit != "" {
		p.Unit = req.Unit
	}
	if req.GSTType != "" {
		p.GSTType = req.GSTType
	}
	if req.CGST != nil {
		p.CGST = *req.CGST
	}
	if req.SGST != nil {
		p.SGST = *req.SGST
	}
	if req.TaxCodeType != "" {
		p.TaxCodeType = req.TaxCodeType
	}
	if req.TaxCode != "" {
		p.TaxCode = req.TaxCode
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.MRP != nil {
		p.MRP = *req.MRP
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}
