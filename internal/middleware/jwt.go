package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/token"
)

// ctxUserID is the context key under which the authenticated user's id is
// stored for handlers and downstream middleware.
const ctxUserID = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject into the request context. Protected
// routes should be wrapped with it so handlers can read the identity via
// middleware.GetUserID. Any verifier failure (bad signature, expiry, wrong
// token type) yields a 401 without detail.
func JWTAuth(verifier *token.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := verifier.Verify(raw, token.TypeAccess)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid token"})
			}
			c.Set(ctxUserID, claims.UserID)
			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user id placed in the context by
// JWTAuth. The boolean is false when the route was not wrapped by it.
func GetUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok
}
