package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that should bypass authentication. These are
// infrastructure endpoints (health checks) and the account entry points that
// must be reachable without credentials.
var publicPaths = map[string]bool{
	"/health":                        true,
	"/health/db":                     true,
	"/api/v1/donors/register":        true,
	"/api/v1/donors/login":           true,
	"/api/v1/donors/forgot-password": true,
	"/api/v1/donors/search":          true,
	"/api/v1/contact":                true,
	"/api/v1/admin/login":            true,
	"/api/v1/admin/forgot-password":  true,
}

// AuthSkipper returns true for requests whose path should skip
// authentication. Pass this function to AuthMiddleware so registration,
// login, and health-check endpoints remain accessible without a bearer
// token.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path bypasses authentication.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
