package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const pingTimeout = 5 * time.Second

// DBHealth is the payload served by the database health endpoint.
type DBHealth struct {
	Status  string       `json:"status"`
	Latency string       `json:"latency,omitempty"`
	Error   string       `json:"error,omitempty"`
	Pool    PoolCounters `json:"pool"`
}

// PoolCounters is a point-in-time snapshot of the connection pool.
type PoolCounters struct {
	Total int32 `json:"total"`
	Idle  int32 `json:"idle"`
	InUse int32 `json:"in_use"`
	Max   int32 `json:"max"`
}

func snapshotPool(pool *pgxpool.Pool) PoolCounters {
	s := pool.Stat()
	return PoolCounters{
		Total: s.TotalConns(),
		Idle:  s.IdleConns(),
		InUse: s.AcquiredConns(),
		Max:   s.MaxConns(),
	}
}

// healthResult maps a ping outcome onto a status code and response payload.
func healthResult(pingErr error, latency time.Duration, pool PoolCounters) (int, DBHealth) {
	if pingErr != nil {
		return http.StatusServiceUnavailable, DBHealth{
			Status: "unavailable",
			Error:  pingErr.Error(),
			Pool:   pool,
		}
	}
	return http.StatusOK, DBHealth{
		Status:  "ok",
		Latency: latency.String(),
		Pool:    pool,
	}
}

// HealthHandler serves the database health endpoint: a bounded ping plus
// pool counters, 503 when the database is unreachable.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		start := time.Now()
		err := pool.Ping(ctx)
		code, body := healthResult(err, time.Since(start), snapshotPool(pool))
		return c.JSON(code, body)
	}
}
