package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/moviestream/identity-system/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", domain.ErrUserNotFound, http.StatusBadRequest},
		{"invalid password", domain.ErrInvalidPassword, http.StatusBadRequest},
		{"login exists", domain.ErrLoginExists, http.StatusBadRequest},
		{"email exists", domain.ErrEmailExists, http.StatusBadRequest},
		{"unsafe entry", domain.ErrUnsafeEntry, http.StatusBadRequest},
		{"role not found", domain.ErrRoleNotFound, http.StatusBadRequest},
		{"token invalid", domain.ErrTokenInvalid, http.StatusUnprocessableEntity},
		{"access revoked", domain.ErrAccessRevoked, http.StatusUnprocessableEntity},
		{"refresh not outstanding", domain.ErrRefreshNotOutstanding, http.StatusUnprocessableEntity},
		{"pair mismatch", domain.ErrPairMismatch, http.StatusUnprocessableEntity},
		{"storage down", domain.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"cache down", domain.ErrCacheUnavailable, http.StatusServiceUnavailable},
		{"wrapped cache down", fmt.Errorf("%w: setnx: connection refused", domain.ErrCacheUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(tc.err, c)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestHTTPErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(echo.NewHTTPError(http.StatusUnauthorized, "missing access token"), c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
