package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/retail-backoffice/internal/config"
	"github.com/iliyamo/retail-backoffice/internal/handler"
	"github.com/iliyamo/retail-backoffice/internal/middleware"
	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/token"
)

// Deps bundles everything route registration needs: handlers, the token
// verifier for protected groups, the role source for admin routes, and the
// optional Redis client powering rate limiting and response caching.
type Deps struct {
	Auth      *handler.AuthHandler
	Branch    *handler.BranchHandler
	Product   *handler.ProductHandler
	Inventory *handler.InventoryHandler
	Customer  *handler.CustomerHandler
	Account   *handler.AccountHandler

	Verifier *token.Verifier
	Roles    middleware.RoleSource
	DB       *sql.DB
	Redis    *redis.Client
}

// Register wires every route of the API onto the Echo instance.
//
// Layout:
//
//	/api/health            liveness + database status, unauthenticated
//	/api/auth/...          credential endpoints, rate limited
//	/api/...               everything else, behind JWT access-token auth
//	/api/admin/...         employee management, admin/manager only
func Register(e *echo.Echo, d Deps) {
	e.GET("/api/health", handler.Health(d.DB))

	// Credential endpoints get the token-bucket limiter so password
	// guessing is throttled per client IP.
	limited := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)

	auth := e.Group("/api/auth", limited)
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)

	// Everything below requires a valid access token.
	api := e.Group("/api", middleware.JWTAuth(d.Verifier))
	api.POST("/auth/logout", d.Auth.Logout)
	api.GET("/auth/me", d.Auth.Me)
	api.PUT("/auth/updatepassword", d.Auth.UpdatePassword)

	// Catalog reads are cached; POS terminals poll these constantly.
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	api.GET("/branches", d.Branch.List, cached)
	api.GET("/branches/:id", d.Branch.Get)
	api.GET("/products", d.Product.List, cached)
	api.GET("/products/:id", d.Product.Get)

	api.GET("/inventory/branch/:id", d.Inventory.ListByBranch)
	api.GET("/inventory/low-stock", d.Inventory.ListLowStock)
	api.PUT("/inventory", d.Inventory.Set)
	api.POST("/inventory/adjust", d.Inventory.Adjust)

	api.POST("/customers", d.Customer.Create)
	api.GET("/customers/:id", d.Customer.Get)
	api.GET("/customers/branch/:id", d.Customer.ListByBranch)
	api.POST("/customers/:id/credits", d.Customer.AddCredit)
	api.GET("/customers/:id/credits", d.Customer.ListCredits)

	api.GET("/accounts/:id", d.Account.Get)
	api.GET("/accounts/branch/:id", d.Account.ListByBranch)
	api.POST("/accounts/:id/balances", d.Account.AddBalance)
	api.GET("/accounts/:id/balances", d.Account.ListBalances)

	// Mutations of shared masters are restricted to admins and managers.
	manage := api.Group("", middleware.RequireRole(d.Roles, model.RoleAdmin, model.RoleManager))
	manage.POST("/branches", d.Branch.Create)
	manage.PUT("/branches/:id", d.Branch.Update)
	manage.DELETE("/branches/:id", d.Branch.Delete)
	manage.POST("/products", d.Product.Create)
	manage.PUT("/products/:id", d.Product.Update)
	manage.DELETE("/products/:id", d.Product.Delete)
	manage.POST("/accounts", d.Account.Create)
	manage.POST("/admin/employees", d.Auth.RegisterEmployee)
}
