package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/moviestream/identity-system/internal/api/handler"
	"github.com/moviestream/identity-system/internal/api/middleware"
	"github.com/moviestream/identity-system/internal/core/ports"
	"github.com/moviestream/identity-system/internal/infrastructure/config"
)

// Services bundles the core collaborators the router wires into
// handlers. They are constructed in main so their lifecycles (worker
// pools, connections) outlive any single request.
type Services struct {
	Session  ports.SessionService
	Accounts ports.AccountService
	Admin    ports.AdminService
}

// NewRouter builds and returns the Echo instance with all routes
// registered.
func NewRouter(cfg *config.Config, log zerolog.Logger, svcs Services, db *mongo.Database, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))

	cookies := handler.CookieSettings{
		AccessName:  cfg.Cookie.AccessName,
		RefreshName: cfg.Cookie.RefreshName,
		AccessTTL:   cfg.JWT.AccessTTL,
		RefreshTTL:  cfg.JWT.RefreshTTL,
		Secure:      cfg.Env != "development",
	}

	authHandler := handler.NewAuthHandler(svcs.Session, cookies)
	accountHandler := handler.NewAccountHandler(svcs.Accounts)
	roleHandler := handler.NewRoleHandler(svcs.Admin)

	authed := middleware.Auth(svcs.Session, cfg.Cookie.AccessName)
	adminOnly := middleware.AdminOnly()

	v1 := e.Group("/api/v1")

	// --- Session lifecycle ---
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.LogIn)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.LogOut)

	// --- Account management ---
	account := v1.Group("/account", authed)
	account.GET("/profile", accountHandler.Profile)
	account.PATCH("/profile", accountHandler.UpdateProfile)
	account.POST("/password", accountHandler.ChangePassword)
	account.POST("/level", accountHandler.ChangeLevel)
	account.GET("/history", accountHandler.History)

	// --- Role administration ---
	roles := v1.Group("/roles", authed, adminOnly)
	roles.POST("", roleHandler.Create)
	roles.PATCH("/:id", roleHandler.Update)
	roles.DELETE("/:id", roleHandler.Delete)
	roles.POST("/assign", roleHandler.Assign)

	// --- Observability (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
