package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviestream/identity-system/internal/core/ports"
)

// ClaimsKey is the echo context key under which validated token claims
// are stored.
const ClaimsKey = "claims"

// Auth validates the access token presented in the configured cookie
// against the session authority and injects the claims into context.
// The User-Agent header is the fingerprint the token must be bound to.
func Auth(session ports.SessionService, accessCookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(accessCookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := session.ValidateAccess(c.Request().Context(), cookie.Value, c.Request().UserAgent())
			if err != nil {
				// Typed domain errors carry their own status mapping.
				return err
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}
