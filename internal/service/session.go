// Package service hosts the session manager that orchestrates credential
// verification, dual-token issuance, refresh, and version-based revocation
// on top of the user store and the token issuer/verifier.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/iliyamo/retail-backoffice/internal/logger"
	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/token"
)

// UserStore is the credential-store contract the session manager depends
// on. repository.UserRepo satisfies it; tests supply an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*model.User, error)
	FindByIdentifier(ctx context.Context, email, employeeID string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	SaveRefreshToken(ctx context.Context, id uint64, tok string, at time.Time) error
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
	RevokeTokens(ctx context.Context, id uint64) error
	UpdatePassword(ctx context.Context, id uint64, hash string) (uint64, error)
}

// PasswordHasher is the one-way hash used for passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// Session is the per-identity session manager. A user is either logged out
// (no stored refresh token) or active (one refresh token bound to the
// current token version); logout and password changes bump the version,
// which fails the version check on every previously issued refresh token.
type Session struct {
	users    UserStore
	hasher   PasswordHasher
	issuer   *token.Issuer
	verifier *token.Verifier
	log      *logger.Logger
}

// NewSession wires the session manager.
func NewSession(users UserStore, hasher PasswordHasher, issuer *token.Issuer, verifier *token.Verifier, log *logger.Logger) *Session {
	return &Session{users: users, hasher: hasher, issuer: issuer, verifier: verifier, log: log}
}

// RegisterInput carries registration fields. Role is only honored on the
// admin endpoint; the public endpoint leaves it empty and gets staff.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
}

// AuthResult is returned by the operations that establish a session.
type AuthResult struct {
	User    *model.User
	Access  token.Token
	Refresh token.Token
}

// RefreshResult is returned by Refresh: a new access token only, the
// presented refresh token stays live until it expires or is revoked.
type RefreshResult struct {
	User   *model.User
	Access token.Token
}

var (
	emailRe = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// Register creates an identity with tokenVersion=0, issues the first token
// pair and persists the refresh token, leaving the session active.
func (s *Session) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return nil, validationf("Please provide all required fields")
	}
	if len(in.Name) > 50 {
		return nil, validationf("Name cannot be more than 50 characters")
	}
	if !emailRe.MatchString(in.Email) {
		return nil, validationf("Please provide a valid email")
	}
	if !phoneRe.MatchString(in.Phone) {
		return nil, validationf("Please provide a valid 10-digit phone number")
	}
	if err := checkPasswordStrength(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleStaff
	}
	if role != model.RoleStaff && role != model.RoleAdmin && role != model.RoleManager {
		return nil, validationf("Role must be one of staff, admin, manager")
	}

	// Single existence query for both unique fields; email reported first.
	existing, err := s.users.FindByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Email == in.Email {
			return nil, model.ErrEmailExists
		}
		return nil, model.ErrPhoneExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("registered employee", "user_id", u.ID, "employee_id", u.EmployeeID)

	res, err := s.establish(ctx, u)
	if err != nil {
		s.log.Error("issue tokens after registration failed", "user_id", u.ID, "error", err.Error())
		return nil, err
	}
	return res, nil
}

// Login verifies credentials and starts a fresh session, overwriting any
// previously stored refresh token (single active session per user).
func (s *Session) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, validationf("Please provide email/employee ID and password")
	}
	u, err := s.users.FindByIdentifier(ctx, strings.ToLower(identifier), strings.ToUpper(identifier))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// Deactivation is checked before the password so no hash comparison
	// runs for disabled accounts.
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now

	res, err := s.establish(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log.Info("login", "user_id", u.ID)
	return res, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated, so retries and concurrent refreshes
// with the same token are idempotent.
func (s *Session) Refresh(ctx context.Context, presented string) (*RefreshResult, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.verifier.Verify(presented, token.TypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	if err := token.VerifyAgainstState(claims, presented, u.RefreshToken, u.TokenVersion); err != nil {
		// Revoked-version and stored-token-mismatch failures are not
		// distinguished externally.
		s.log.Debug("refresh rejected", "user_id", u.ID, "reason", err.Error())
		return nil, ErrInvalidToken
	}
	access, err := s.issuer.IssueAccess(u.ID)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{User: u, Access: access}, nil
}

// Logout bumps the token version and clears the stored refresh token,
// invalidating every refresh token ever issued to the user.
func (s *Session) Logout(ctx context.Context, userID uint64) error {
	if err := s.users.RevokeTokens(ctx, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.log.Info("logout", "user_id", userID)
	return nil
}

// ChangePassword verifies the current password, swaps the hash while
// bumping the token version, then issues a pair bound to the new version:
// the acting session survives, all others are revoked.
func (s *Session) ChangePassword(ctx context.Context, userID uint64, current, next string) (*AuthResult, error) {
	if current == "" || next == "" {
		return nil, validationf("Please provide current and new password")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, current) {
		return nil, ErrInvalidCredentials
	}
	if err := checkPasswordStrength(next); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return nil, err
	}
	version, err := s.users.UpdatePassword(ctx, userID, hash)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	u.TokenVersion = version

	res, err := s.establish(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log.Info("password changed", "user_id", userID, "token_version", version)
	return res, nil
}

// GetUser loads an identity for the /me endpoint.
func (s *Session) GetUser(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// establish issues an access/refresh pair bound to the user's current token
// version and persists the refresh token with its issuance time.
func (s *Session) establish(ctx context.Context, u *model.User) (*AuthResult, error) {
	access, err := s.issuer.IssueAccess(u.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefresh(u.ID, u.TokenVersion)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.users.SaveRefreshToken(ctx, u.ID, refresh.Value, now); err != nil {
		return nil, err
	}
	u.RefreshToken = refresh.Value
	u.LastTokenRefresh = &now
	return &AuthResult{User: u, Access: access, Refresh: refresh}, nil
}

const passwordSpecials = "@$!%*?&"

// checkPasswordStrength enforces the upstream password policy: at least 8
// characters with one uppercase, one lowercase, one digit and one special
// character, drawn only from the allowed alphabet.
func checkPasswordStrength(pw string) error {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	ok := len(pw) >= 8
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r) && r <= unicode.MaxASCII:
			hasUpper = true
		case unicode.IsLower(r) && r <= unicode.MaxASCII:
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			ok = false
		}
	}
	if !ok || !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return validationf("Password must contain at least 8 characters, 1 uppercase, 1 lowercase, 1 number, and 1 special character (%s)", passwordSpecials)
	}
	return nil
}
