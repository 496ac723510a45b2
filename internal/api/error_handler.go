package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/moviestream/identity-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps each domain failure to its fixed HTTP status. This mapping
//     is a boundary contract external callers depend on.
//   - Maps transient infra failures to 503 so a cache outage never
//     masquerades as "attack detected".
//   - Logs unexpected errors internally without leaking details.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusBadRequest, "user not found"
	case errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusBadRequest, "invalid password"
	case errors.Is(err, domain.ErrLoginExists):
		return http.StatusBadRequest, "user with this login already exists"
	case errors.Is(err, domain.ErrEmailExists):
		return http.StatusBadRequest, "user with this email already exists"
	case errors.Is(err, domain.ErrUnsafeEntry):
		return http.StatusBadRequest, "suspected unsafe entry"
	case errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusBadRequest, "role does not exist"
	case errors.Is(err, domain.ErrRoleExists):
		return http.StatusBadRequest, "role already exists"
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnprocessableEntity, "signature has expired"
	case errors.Is(err, domain.ErrAccessRevoked):
		return http.StatusUnprocessableEntity, "access token revoked"
	case errors.Is(err, domain.ErrRefreshNotOutstanding):
		return http.StatusUnprocessableEntity, "refresh token invalid"
	case errors.Is(err, domain.ErrPairMismatch):
		return http.StatusUnprocessableEntity, "access and refresh tokens do not match"
	case errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, domain.ErrCacheUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("transient infrastructure failure")
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
