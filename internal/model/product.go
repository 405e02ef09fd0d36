package model

import "time"

// GST handling modes for a product's selling price.
const (
	GSTIncluded      = "Included"
	GSTNotIncluded   = "NotIncluded"
	GSTNotApplicable = "NotApplicable"
)

// Tax code classifications.
const (
	CodeHSN = "HSN"
	CodeSAC = "SAC"
)

// Product represents a sellable item in the `products` table. SKU doubles as
// the barcode and is unique across all products. Prices are stored in rupees
// as decimal values.
type Product struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"subCategory,omitempty"`
	Unit         string    `json:"unit"`
	GSTType      string    `json:"gstType"`
	CGST         float64   `json:"cgst"`
	SGST         float64   `json:"sgst"`
	TaxCodeType  string    `json:"taxCodeType"`
	TaxCode      string    `json:"taxCode"`
	CostPrice    float64   `json:"costPrice"`
	MRP          float64   `json:"mrp"`
	SellingPrice float64   `json:"sellingPrice"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
