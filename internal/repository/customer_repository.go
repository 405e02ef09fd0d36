package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/retail-backoffice/internal/model"
)

// CustomerRepo stores customers and their credit (khata) entries. Product
// ids inside a credit entry are kept as a JSON array column; they are an
// opaque reference list, never queried relationally.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerColumns = `id, name, phone, city, branch_id, branch_code, created_at, updated_at`

// Create inserts a customer with the denormalized branch code.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customers (name, phone, city, branch_id, branch_code) VALUES (?,?,?,?,?)",
		c.Name, c.Phone, c.City, c.BranchID, c.BranchCode)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	got, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// GetByID fetches a customer, returning model.ErrNotFound when absent.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	var c model.Customer
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id=?", id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.City, &c.BranchID, &c.BranchCode, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByBranch returns all customers of a branch ordered by id.
func (r *CustomerRepo) ListByBranch(ctx context.Context, branchID uint64) ([]*model.Customer, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE branch_id=? ORDER BY id", branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Customer
	for rows.Next() {
		c := new(model.Customer)
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.City, &c.BranchID, &c.BranchCode,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddCredit records a credit sale against an existing customer.
func (r *CustomerRepo) AddCredit(ctx context.Context, e *model.CreditEntry) error {
	if _, err := r.GetByID(ctx, e.CustomerID); err != nil {
		return err
	}
	products, err := json.Marshal(e.ProductIDs)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customer_credits (customer_id, credit_date, product_ids, total_amount) VALUES (?,?,?,?)",
		e.CustomerID, e.Date, products, e.TotalAmount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListCredits returns the credit entries of a customer, newest first.
func (r *CustomerRepo) ListCredits(ctx context.Context, customerID uint64) ([]*model.CreditEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, customer_id, credit_date, product_ids, total_amount
		 FROM customer_credits WHERE customer_id=? ORDER BY credit_date DESC, id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CreditEntry
	for rows.Next() {
		e := new(model.CreditEntry)
		var products []byte
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Date, &products, &e.TotalAmount); err != nil {
			return nil, err
		}
		if len(products) > 0 {
			if err := json.Unmarshal(products, &e.ProductIDs); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
