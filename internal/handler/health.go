package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports process liveness plus database reachability, so load
// balancers can distinguish a wedged pool from a healthy instance.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := reqContext(c)
		defer cancel()

		dbStatus := "up"
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "down"
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, echo.Map{
			"success":   dbStatus == "up",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
