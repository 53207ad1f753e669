package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	ActorIDKey   contextKey = "actor_id"
	ActorRoleKey contextKey = "actor_role"
	ActorNameKey contextKey = "actor_name"
)

// AuthMiddleware validates the bearer token on each request and places the
// authenticated actor's identity on the request context. Requests matching
// the skipper (public endpoints) pass through without a token.
//
// The actor ID is also set on the echo context under "actor_id" so the rate
// limiter can key buckets per account.
func AuthMiddleware(signingKey []byte, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")

			if skipper != nil && skipper(c) {
				// Public endpoint. A valid token is still honored so
				// handlers can personalize results (e.g. donor search
				// excluding the caller), but a missing or bad token is
				// not an error here.
				if claims, err := bearerClaims(signingKey, authHeader); err == nil {
					setActor(c, claims)
				}
				return next(c)
			}

			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			claims, err := bearerClaims(signingKey, authHeader)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			setActor(c, claims)
			return next(c)
		}
	}
}

// bearerClaims extracts and validates the token from an Authorization header
// value of the form "Bearer <token>".
func bearerClaims(signingKey []byte, authHeader string) (*Claims, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errInvalidAuthHeader
	}
	return ParseToken(signingKey, parts[1])
}

var errInvalidAuthHeader = errors.New("invalid authorization format")

func setActor(c echo.Context, claims *Claims) {
	c.Set("actor_id", claims.Subject)

	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, ActorIDKey, claims.Subject)
	ctx = context.WithValue(ctx, ActorRoleKey, claims.Role)
	ctx = context.WithValue(ctx, ActorNameKey, claims.Name)
	c.SetRequest(c.Request().WithContext(ctx))
}

func ActorIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ActorIDKey).(string)
	return id
}

func ActorRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ActorRoleKey).(string)
	return role
}

func ActorNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(ActorNameKey).(string)
	return name
}
