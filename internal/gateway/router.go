// Package gateway implements the thin routing gateway: a stateless
// pass-through proxy in front of the auth service with no logic of its
// own beyond health probes and metrics.
package gateway

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/moviestream/identity-system/internal/infrastructure/config"
)

// NewRouter builds the gateway Echo instance: everything under / is
// forwarded verbatim to the auth service upstream.
func NewRouter(cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	upstream, err := url.Parse(cfg.Gateway.AuthUpstream)
	if err != nil {
		return nil, fmt.Errorf("parse auth upstream %q: %w", cfg.Gateway.AuthUpstream, err)
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("gateway"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echoprometheus.NewHandler())

	balancer := echomiddleware.NewRoundRobinBalancer([]*echomiddleware.ProxyTarget{
		{URL: upstream},
	})
	proxy := echomiddleware.ProxyWithConfig(echomiddleware.ProxyConfig{
		Balancer: balancer,
		Skipper: func(c echo.Context) bool {
			// Gateway's own probes are not forwarded.
			p := c.Path()
			return p == "/health" || p == "/metrics"
		},
	})
	e.Use(proxy)

	log.Info().Str("upstream", upstream.String()).Msg("gateway proxying to auth service")
	return e, nil
}
