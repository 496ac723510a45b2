package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

type stubSession struct {
	claims *domain.TokenClaims
	err    error

	gotToken       string
	gotFingerprint string
}

func (s *stubSession) SignUp(context.Context, ports.SignUpInput) (*domain.User, error) {
	panic("not used")
}

func (s *stubSession) LogIn(context.Context, string, string, string) (*domain.TokenPair, error) {
	panic("not used")
}

func (s *stubSession) ValidateAccess(_ context.Context, token, fingerprint string) (*domain.TokenClaims, error) {
	s.gotToken = token
	s.gotFingerprint = fingerprint
	return s.claims, s.err
}

func (s *stubSession) Refresh(context.Context, string, string, string) (*domain.TokenPair, error) {
	panic("not used")
}

func (s *stubSession) LogOut(context.Context, string, string, string) error {
	panic("not used")
}

const cookieName = "access_token_cookie"

func TestAuthMiddleware_ValidCookie(t *testing.T) {
	e := echo.New()
	session := &stubSession{claims: &domain.TokenClaims{UserID: "u1", Fingerprint: "ua-test"}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "signed-token"})
	req.Header.Set("User-Agent", "ua-test")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(session, cookieName)(func(c echo.Context) error {
		called = true
		claims, _ := c.Get(ClaimsKey).(*domain.TokenClaims)
		if claims == nil || claims.UserID != "u1" {
			t.Fatalf("claims not injected: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if session.gotToken != "signed-token" {
		t.Fatalf("token not forwarded: %q", session.gotToken)
	}
	if session.gotFingerprint != "ua-test" {
		t.Fatalf("fingerprint not forwarded: %q", session.gotFingerprint)
	}
}

func TestAuthMiddleware_MissingCookie(t *testing.T) {
	e := echo.New()
	session := &stubSession{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(session, cookieName)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if err == nil || !errorAsHTTP(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthMiddleware_ServiceErrorPropagates(t *testing.T) {
	e := echo.New()
	session := &stubSession{err: domain.ErrAccessRevoked}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "revoked"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(session, cookieName)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != domain.ErrAccessRevoked {
		t.Fatalf("expected domain error to propagate untouched, got %v", err)
	}
}

func TestAdminOnly(t *testing.T) {
	e := echo.New()

	run := func(claims *domain.TokenClaims) (*httptest.ResponseRecorder, bool) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if claims != nil {
			c.Set(ClaimsKey, claims)
		}

		called := false
		handler := AdminOnly()(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec, called
	}

	if rec, called := run(&domain.TokenClaims{IsAdmin: true}); !called || rec.Code != http.StatusOK {
		t.Fatalf("admin should pass, got %d", rec.Code)
	}
	if rec, called := run(&domain.TokenClaims{IsAdmin: false}); called || rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin should be rejected, got %d", rec.Code)
	}
	if rec, called := run(nil); called || rec.Code != http.StatusForbidden {
		t.Fatalf("missing claims should be rejected, got %d", rec.Code)
	}
}

func errorAsHTTP(err error, target **echo.HTTPError) bool {
	he, ok := err.(*echo.HTTPError)
	if ok {
		*target = he
	}
	return ok
}
