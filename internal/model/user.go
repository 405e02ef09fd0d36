package model

import "time"

// Roles assignable to an employee. New users default to RoleStaff; the
// admin registration endpoint may assign any of the three.
const (
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// User represents an employee identity as stored in the `users` table,
// including the embedded token state used for refresh-token revocation.
//
// Fields:
//
//	ID               – primary key identifier of the user.
//	Name             – display name.
//	Email            – unique email address, stored lowercase.
//	EmployeeID       – unique employee code (EMP0001, ...), assigned at insert.
//	Phone            – unique 10-digit phone number.
//	PasswordHash     – bcrypt hashed password.
//	Role             – one of staff, admin, manager.
//	IsActive         – soft deactivation flag; accounts are never hard-deleted.
//	RefreshToken     – the single live refresh token, empty when logged out.
//	TokenVersion     – monotonic revocation counter embedded in refresh tokens.
//	LastTokenRefresh – when the stored refresh token was last replaced.
//	LastLogin        – last successful login time.
type User struct {
	ID               uint64
	Name             string
	Email            string
	EmployeeID       string
	Phone            string
	PasswordHash     string
	Role             string
	IsActive         bool
	RefreshToken     string
	TokenVersion     uint64
	LastTokenRefresh *time.Time
	LastLogin        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
