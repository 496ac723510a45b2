package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviestream/identity-system/internal/api/middleware"
	"github.com/moviestream/identity-system/internal/core/domain"
)

// CookieSettings fixes the delivery channel for the token pair: two
// separate HttpOnly cookies with configured names. The Domain attribute
// is never set, keeping both cookies host-only.
type CookieSettings struct {
	AccessName  string
	RefreshName string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	Secure      bool
}

// ctxClaims extracts the claims injected by the Auth middleware.
// Absence means the route was wired without the middleware; that
// mistake surfaces as 401 rather than a panic.
func ctxClaims(c echo.Context) (*domain.TokenClaims, error) {
	claims, _ := c.Get(middleware.ClaimsKey).(*domain.TokenClaims)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

func setTokenCookies(c echo.Context, cs CookieSettings, pair *domain.TokenPair) {
	c.SetCookie(tokenCookie(cs, cs.AccessName, pair.Access, cs.AccessTTL))
	c.SetCookie(tokenCookie(cs, cs.RefreshName, pair.Refresh, cs.RefreshTTL))
}

func clearTokenCookies(c echo.Context, cs CookieSettings) {
	c.SetCookie(tokenCookie(cs, cs.AccessName, "", -time.Second))
	c.SetCookie(tokenCookie(cs, cs.RefreshName, "", -time.Second))
}

func tokenCookie(cs CookieSettings, name, value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	} else {
		cookie.MaxAge = -1
	}
	return cookie
}

// cookieValue reads a cookie, tolerating absence.
func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
