package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/retail-backoffice/internal/model"
)

// UserRepo persists employee identities and their embedded token state in
// the `users` table. Token-state mutations are single statements so the
// version counter and refresh-token slot are never half-written.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, name, email, employee_id, phone, password_hash, role, is_active,
	refresh_token, token_version, last_token_refresh, last_login, created_at, updated_at`

// Create inserts the user and assigns the employee code inside one
// transaction. The code is EMP plus the zero-padded auto-increment id, so
// codes stay unique and monotonic under concurrent registrations.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, password_hash, role) VALUES (?,?,?,?,?)",
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role)
	if err != nil {
		return duplicateErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	code := fmt.Sprintf("EMP%04d", id)
	if _, err := tx.ExecContext(ctx, "UPDATE users SET employee_id=? WHERE id=?", code, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	u.ID = uint64(id)
	u.EmployeeID = code
	return nil
}

// FindByEmailOrPhone performs the single existence query used before
// registration. Returns model.ErrNotFound when neither field matches.
func (r *UserRepo) FindByEmailOrPhone(ctx context.Context, email, phone string) (*model.User, error) {
	return r.findOne(ctx, "email=? OR phone=?", email, phone)
}

// FindByIdentifier resolves a login identifier in one lookup: it matches the
// lowercased form against email and the uppercased form against the employee
// code.
func (r *UserRepo) FindByIdentifier(ctx context.Context, email, employeeID string) (*model.User, error) {
	return r.findOne(ctx, "email=? OR employee_id=?", email, employeeID)
}

// FindByID fetches a user by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.findOne(ctx, "id=?", id)
}

func (r *UserRepo) findOne(ctx context.Context, where string, args ...any) (*model.User, error) {
	var (
		u           model.User
		employeeID  sql.NullString
		refresh     sql.NullString
		lastRefresh sql.NullTime
		lastLogin   sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", args...,
	).Scan(&u.ID, &u.Name, &u.Email, &employeeID, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive,
		&refresh, &u.TokenVersion, &lastRefresh, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	u.EmployeeID = employeeID.String
	u.RefreshToken = refresh.String
	if lastRefresh.Valid {
		t := lastRefresh.Time
		u.LastTokenRefresh = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

// SaveRefreshToken stores the live refresh token and its issuance time in
// one statement, overwriting whatever token was there before (single-slot
// sessions).
func (r *UserRepo) SaveRefreshToken(ctx context.Context, id uint64, tok string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=?, last_token_refresh=? WHERE id=?", tok, at, id)
	return err
}

// UpdateLastLogin records a successful login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET last_login=? WHERE id=?", at, id)
	return err
}

// RevokeTokens increments the token version and clears the refresh-token
// slot in a single statement, so the read-modify-write happens inside the
// store and concurrent revocations only ever widen revocation scope.
func (r *UserRepo) RevokeTokens(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET token_version=token_version+1, refresh_token=NULL WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// UpdatePassword swaps the password hash and bumps the token version
// atomically, returning the new version so the caller can bind a fresh
// refresh token to it.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=?, token_version=token_version+1 WHERE id=?", hash, id)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, model.ErrNotFound
	}
	var version uint64
	if err := tx.QueryRowContext(ctx, "SELECT token_version FROM users WHERE id=?", id).Scan(&version); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return version, nil
}

// duplicateErr maps MySQL duplicate-key errors (1062) onto the field
// sentinels; the key name appears in the driver's error text.
func duplicateErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "phone") {
		return model.ErrPhoneExists
	}
	return model.ErrEmailExists
}
