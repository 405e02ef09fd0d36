package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/middleware"
	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/service"
)

// AuthHandler exposes the session manager over HTTP.
type AuthHandler struct {
	Sessions *service.Session
}

func NewAuthHandler(s *service.Session) *AuthHandler { return &AuthHandler{Sessions: s} }

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"` // honored on the admin endpoint only
}
type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}
type updatePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userSummary struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	EmployeeID string     `json:"employeeId"`
	Phone      string     `json:"phone"`
	Role       string     `json:"role"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
}

func summarize(u *model.User, withLastLogin bool) userSummary {
	s := userSummary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
		Phone:      u.Phone,
		Role:       u.Role,
	}
	if withLastLogin {
		s.LastLogin = u.LastLogin
	}
	return s
}

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Register handles POST /api/auth/register: self-service registration,
// always as staff.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Sessions.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":      true,
		"message":      "Employee registered successfully",
		"accessToken":  res.Access.Value,
		"refreshToken": res.Refresh.Value,
		"user":         summarize(res.User, false),
	})
}

// RegisterEmployee handles POST /api/admin/employees: registration by an
// admin or manager, who may assign a role.
func (h *AuthHandler) RegisterEmployee(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Sessions.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Employee registered successfully",
		"user":    summarize(res.User, false),
	})
}

// Login handles POST /api/auth/login. The identifier may be an email or an
// employee code.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Sessions.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAccountDisabled) {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"success": false,
				"message": "Your account has been deactivated. Please contact admin.",
			})
		}
		return authError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Login successful",
		"accessToken":  res.Access.Value,
		"refreshToken": res.Refresh.Value,
		"user":         summarize(res.User, true),
	})
}

// Refresh handles POST /api/auth/refresh: exchanges a valid refresh token
// for a new access token without rotating the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req) // a missing body is reported as a missing token below

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"accessToken": res.Access.Value,
		"user":        summarize(res.User, false),
	})
}

// Logout handles POST /api/auth/logout (protected). Revokes every refresh
// token of the authenticated user regardless of which one is held where.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := middleware.GetUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Sessions.Logout(ctx, uid); err != nil {
		return authError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out successfully"})
}

// Me handles GET /api/auth/me (protected) and returns the full user record
// minus credential fields.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.GetUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Sessions.GetUser(ctx, uid)
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user": echo.Map{
			"id":         u.ID,
			"name":       u.Name,
			"email":      u.Email,
			"employeeId": u.EmployeeID,
			"phone":      u.Phone,
			"role":       u.Role,
			"isActive":   u.IsActive,
			"lastLogin":  u.LastLogin,
			"createdAt":  u.CreatedAt,
			"updatedAt":  u.UpdatedAt,
		},
	})
}

// UpdatePassword handles PUT /api/auth/updatepassword (protected). On
// success the caller receives a fresh token pair; all other sessions are
// revoked.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	uid, ok := middleware.GetUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Sessions.ChangePassword(ctx, uid, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Current password is incorrect"})
		}
		return authError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Password updated successfully",
		"accessToken":  res.Access.Value,
		"refreshToken": res.Refresh.Value,
	})
}

// authError maps the session manager's error taxonomy onto HTTP responses.
// Anything outside the closed set is a generic 500; no internal detail
// crosses the boundary.
func authError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": verr.Message})
	case errors.Is(err, model.ErrEmailExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Email already registered"})
	case errors.Is(err, model.ErrPhoneExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Phone number already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid credentials"})
	case errors.Is(err, service.ErrAccountDisabled):
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Account deactivated"})
	case errors.Is(err, service.ErrMissingToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Refresh token required"})
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid or expired refresh token"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "User not found"})
	}
	c.Logger().Errorf("auth: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error"})
}
