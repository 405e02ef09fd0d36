package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/model"
)

// RoleSource resolves the role for an authenticated user. Access tokens
// carry only identity and type, so the guard reads the role from the user
// store on each request. repository.UserRepo satisfies this.
type RoleSource interface {
	FindByID(ctx context.Context, id uint64) (*model.User, error)
}

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the given roles. It assumes JWTAuth ran earlier; a
// missing identity is a 401, a known identity with the wrong role a 403.
func RequireRole(src RoleSource, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := GetUserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
			}
			u, err := src.FindByID(c.Request().Context(), id)
			if err != nil || !u.IsActive || !allowed[u.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "forbidden"})
			}
			return next(c)
		}
	}
}
