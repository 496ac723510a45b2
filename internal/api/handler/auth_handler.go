package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviestream/identity-system/internal/api/metrics"
	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

// AuthHandler serves the session-credential lifecycle endpoints.
// Tokens travel in cookies; the User-Agent header is the fingerprint.
type AuthHandler struct {
	session ports.SessionService
	cookies CookieSettings
}

func NewAuthHandler(session ports.SessionService, cookies CookieSettings) *AuthHandler {
	return &AuthHandler{session: session, cookies: cookies}
}

type signUpRequest struct {
	Login     string `json:"login" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type logInRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignUp creates a new account bound to the lowest-level role.
// No tokens are issued; the client logs in afterwards.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.session.SignUp(c.Request().Context(), ports.SignUpInput{
		Login:     req.Login,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrLoginExists) || errors.Is(err, domain.ErrEmailExists) {
			metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
		}
		return err
	}

	metrics.SignupsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, user)
}

// LogIn verifies credentials and delivers a fresh token pair as two
// host-only cookies.
func (h *AuthHandler) LogIn(c echo.Context) error {
	var req logInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.session.LogIn(c.Request().Context(), req.Login, req.Password, c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.LoginsTotal.WithLabelValues("user_not_found").Inc()
		case errors.Is(err, domain.ErrInvalidPassword):
			metrics.LoginsTotal.WithLabelValues("invalid_password").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	setTokenCookies(c, h.cookies, pair)
	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges the outstanding refresh token for a brand-new pair
// and rotates both cookies. Each refresh token works exactly once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	accessToken := cookieValue(c, h.cookies.AccessName)
	refreshToken := cookieValue(c, h.cookies.RefreshName)
	if refreshToken == "" {
		return domain.ErrRefreshNotOutstanding
	}

	pair, err := h.session.Refresh(c.Request().Context(), c.Request().UserAgent(), accessToken, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRefreshNotOutstanding):
			metrics.RefreshTotal.WithLabelValues("not_outstanding").Inc()
		case errors.Is(err, domain.ErrPairMismatch):
			metrics.RefreshTotal.WithLabelValues("pair_mismatch").Inc()
		case errors.Is(err, domain.ErrUnsafeEntry):
			metrics.RefreshTotal.WithLabelValues("unsafe_entry").Inc()
			metrics.UnsafeEntriesTotal.Inc()
		}
		return err
	}

	metrics.RefreshTotal.WithLabelValues("success").Inc()
	setTokenCookies(c, h.cookies, pair)
	return c.JSON(http.StatusOK, pair)
}

// LogOut denylists both presented tokens and clears the cookies.
// Idempotent: logging out twice is harmless.
func (h *AuthHandler) LogOut(c echo.Context) error {
	accessToken := cookieValue(c, h.cookies.AccessName)
	refreshToken := cookieValue(c, h.cookies.RefreshName)

	if err := h.session.LogOut(c.Request().Context(), accessToken, refreshToken, c.Request().UserAgent()); err != nil {
		return err
	}

	metrics.LogoutsTotal.Inc()
	clearTokenCookies(c, h.cookies)
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}
