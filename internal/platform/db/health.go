package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// healthResponse is the /health/db payload. JSON field names follow the
// camelCase convention of the rest of the API.
type healthResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	TotalConns    int32  `json:"totalConns"`
	IdleConns     int32  `json:"idleConns"`
	AcquiredConns int32  `json:"acquiredConns"`
	MaxConns      int32  `json:"maxConns"`
}

// HealthHandler reports whether Postgres answers a ping, with current pool
// occupancy. Returns 503 when the database is unreachable so load balancers
// can take the instance out of rotation.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		stat := pool.Stat()
		resp := healthResponse{
			TotalConns:    stat.TotalConns(),
			IdleConns:     stat.IdleConns(),
			AcquiredConns: stat.AcquiredConns(),
			MaxConns:      stat.MaxConns(),
		}

		if err := pool.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Message = err.Error()
			return c.JSON(http.StatusServiceUnavailable, resp)
		}

		resp.Status = "healthy"
		return c.JSON(http.StatusOK, resp)
	}
}
