package api

import (
	"net"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cinefind/moviesearch/docs" // Swagger docs
	"github.com/cinefind/moviesearch/internal/api/handler"
	"github.com/cinefind/moviesearch/internal/api/middleware"
	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/ports"
)

const bodyLimit = "64K"

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Service ports.AccountService
	Resets  handler.ResetQueue
	// Revocations is optional; without it logout answers 503 and revoked
	// tokens are not checked.
	Revocations ports.RevocationList
	Health      map[string]handler.Pinger
	RateLimit   middleware.RateLimitConfig
	// TrustedProxies are the peers whose X-Forwarded-For names the client.
	// When empty the client address is the TCP peer.
	TrustedProxies []*net.IPNet
	Log            zerolog.Logger
	// Registerer receives the HTTP metrics and Gatherer backs /metrics. Both
	// default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.IPExtractor = clientIP(d.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	registerer, gatherer := d.Registerer, d.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "moviesearch",
		Registerer: registerer,
	}))

	accounts := handler.NewAccountHandler(d.Service, d.Resets, d.Revocations)
	admin := handler.NewAdminHandler(d.Service)
	auth := middleware.Auth(d.Service, d.Revocations, d.Log)
	limited := middleware.RateLimit(d.RateLimit)

	// --- Credential routes (rate limited) ---
	e.POST("/signup", accounts.Signup, limited)
	e.POST("/login", accounts.Login, limited)
	e.POST("/reset-password", accounts.RequestReset, limited)
	e.POST("/confirm-reset", accounts.ConfirmReset, limited)

	// --- Session routes ---
	e.GET("/me", accounts.Me, auth)
	e.POST("/logout", accounts.Logout, auth)
	e.GET("/admin-only", accounts.AdminOnly, auth, middleware.RBAC(domain.RoleAdmin))

	adminGroup := e.Group("/admin", auth, middleware.RBAC(domain.RoleAdmin))
	adminGroup.PATCH("/accounts/:id/role", admin.ChangeRole)

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(d.Health, d.Log)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})

	return e
}

// clientIP picks how c.RealIP resolves the caller, which keys the rate
// limiter. Forwarding headers count only when they come from a trusted proxy.
func clientIP(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
