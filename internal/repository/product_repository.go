package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/retail-backoffice/internal/model"
)

// ProductRepo encapsulates all database queries related to products.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = `id, name, sku, category, sub_category, unit, gst_type, cgst, sgst,
	tax_code_type, tax_code, cost_price, mrp, selling_price, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	p := new(model.Product)
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.SubCategory, &p.Unit,
		&p.GSTType, &p.CGST, &p.SGST, &p.TaxCodeType, &p.TaxCode,
		&p.CostPrice, &p.MRP, &p.SellingPrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a product. A duplicate SKU yields ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO products (name, sku, category, sub_category, unit, gst_type, cgst, sgst,
			tax_code_type, tax_code, cost_price, mrp, selling_price, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.Name, p.SKU, p.Category, p.SubCategory, p.Unit, p.GSTType, p.CGST, p.SGST,
		p.TaxCodeType, p.TaxCode, p.CostPrice, p.MRP, p.SellingPrice, p.IsActive)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	got, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

// GetByID fetches a product, returning model.ErrNotFound when absent.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns products ordered by id. When activeOnly is set, disabled
// products are filtered out.
func (r *ProductRepo) List(ctx context.Context, activeOnly bool) ([]*model.Product, error) {
	q := "SELECT " + productColumns + " FROM products"
	if activeOnly {
		q += " WHERE is_active=1"
	}
	rows, err := r.DB.QueryContext(ctx, q+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites the mutable product fields (SKU is immutable).
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET name=?, category=?, sub_category=?, unit=?, gst_type=?, cgst=?,
			sgst=?, tax_code_type=?, tax_code=?, cost_price=?, mrp=?, selling_price=?, is_active=?
		 WHERE id=?`,
		p.Name, p.Category, p.SubCategory, p.Unit, p.GSTType, p.CGST, p.SGST,
		p.TaxCodeType, p.TaxCode, p.CostPrice, p.MRP, p.SellingPrice, p.IsActive, p.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetByID(ctx, p.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes a product unless inventory still references it.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM inventory WHERE product_id=?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return model.ErrNotFound
	}
	return nil
}
