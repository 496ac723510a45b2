package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviestream/identity-system/internal/core/domain"
)

// AdminOnly gates administrative routes on the is_admin claim copied
// into the token at issuance. Must run after Auth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := c.Get(ClaimsKey).(*domain.TokenClaims)
			if claims == nil || !claims.IsAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
