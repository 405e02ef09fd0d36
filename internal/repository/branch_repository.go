package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/retail-backoffice/internal/model"
)

// BranchRepo encapsulates all database queries related to branches.
type BranchRepo struct{ DB *sql.DB }

func NewBranchRepo(db *sql.DB) *BranchRepo { return &BranchRepo{DB: db} }

const branchColumns = `id, name, code, street, city, state, country, pincode,
	contact_phone, contact_email, gst_number, status, created_at, updated_at`

// Create inserts a new branch. On success the ID and timestamp fields are
// populated. A duplicate code yields ErrDuplicate.
func (r *BranchRepo) Create(ctx context.Context, b *model.Branch) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO branches (name, code, street, city, state, country, pincode,
			contact_phone, contact_email, gst_number, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		b.Name, b.Code, b.Street, b.City, b.State, b.Country, b.Pincode,
		b.ContactPhone, b.ContactEmail, b.GSTNumber, b.Status)
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
	b.ID = uint64(id)
	got, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID fetches a branch, returning model.ErrNotFound when absent.
func (r *BranchRepo) GetByID(ctx context.Context, id uint64) (*model.Branch, error) {
	var b model.Branch
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+branchColumns+" FROM branches WHERE id=?", id).
		Scan(&b.ID, &b.Name, &b.Code, &b.Street, &b.City, &b.State, &b.Country, &b.Pincode,
			&b.ContactPhone, &b.ContactEmail, &b.GSTNumber, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetByCode fetches a branch by its unique short code.
func (r *BranchRepo) GetByCode(ctx context.Context, code string) (*model.Branch, error) {
	var b model.Branch
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+branchColumns+" FROM branches WHERE code=?", code).
		Scan(&b.ID, &b.Name, &b.Code, &b.Street, &b.City, &b.State, &b.Country, &b.Pincode,
			&b.ContactPhone, &b.ContactEmail, &b.GSTNumber, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns all branches ordered by id.
func (r *BranchRepo) List(ctx context.Context) ([]*model.Branch, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+branchColumns+" FROM branches ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Branch
	for rows.Next() {
		b := new(model.Branch)
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &b.Street, &b.City, &b.State, &b.Country,
			&b.Pincode, &b.ContactPhone, &b.ContactEmail, &b.GSTNumber, &b.Status,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update rewrites the mutable branch fields. Code stays immutable after
// creation because customers denormalize it.
func (r *BranchRepo) Update(ctx context.Context, b *model.Branch) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE branches SET name=?, street=?, city=?, state=?, country=?, pincode=?,
			contact_phone=?, contact_email=?, gst_number=?, status=? WHERE id=?`,
		b.Name, b.Street, b.City, b.State, b.Country, b.Pincode,
		b.ContactPhone, b.ContactEmail, b.GSTNumber, b.Status, b.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetByID(ctx, b.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes a branch unless inventory still references it, in which
// case ErrConflict is returned.
func (r *BranchRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM inventory WHERE branch_id=?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM branches WHERE id=?", id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return model.ErrNotFound
	}
	return nil
}
