package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/retail-backoffice/internal/model"
)

// AccountRepo stores branch money accounts and their daily balance
// snapshots.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = `id, account_type, branch_id, status, created_at, updated_at`

// Create inserts an account. One account per (branch, type) is enforced by
// a unique key; violations yield ErrDuplicate.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (account_type, branch_id, status) VALUES (?,?,?)",
		a.Type, a.BranchID, a.Status)
	if err != nil {
		return duplicateOr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	got, err := r.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *got
	return nil
}

// GetByID fetches an account, returning model.ErrNotFound when absent.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=?", id).
		Scan(&a.ID, &a.Type, &a.BranchID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByBranch returns all accounts of a branch.
func (r *AccountRepo) ListByBranch(ctx context.Context, branchID uint64) ([]*model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE branch_id=? ORDER BY id", branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a := new(model.Account)
		if err := rows.Scan(&a.ID, &a.Type, &a.BranchID, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddBalance records a daily opening/closing snapshot for an account.
func (r *AccountRepo) AddBalance(ctx context.Context, e *model.BalanceEntry) error {
	if _, err := r.GetByID(ctx, e.AccountID); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO account_balances (account_id, balance_date, opening_balance, closing_balance) VALUES (?,?,?,?)",
		e.AccountID, e.Date, e.OpeningBalance, e.ClosingBalance)
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

// ListBalances returns an account's balance history, newest first.
func (r *AccountRepo) ListBalances(ctx context.Context, accountID uint64) ([]*model.BalanceEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, account_id, balance_date, opening_balance, closing_balance
		 FROM account_balances WHERE account_id=? ORDER BY balance_date DESC, id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.BalanceEntry
	for rows.Next() {
		e := new(model.BalanceEntry)
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Date, &e.OpeningBalance, &e.ClosingBalance); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func duplicateOr(err error) error {
	if err != nil && containsDupCode(err) {
		return ErrDuplicate
	}
	return err
}
