package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avelora/qr-loyalty/internal/config"
	"github.com/avelora/qr-loyalty/internal/handler"
	"github.com/avelora/qr-loyalty/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring probes hit this endpoint.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the business and admin authentication routes.
// Unauthenticated operations live under /v1/auth; the /v1/me session probe
// requires a valid access token.  The rate limiter fronts the credential
// endpoints so password guessing is throttled per IP.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/admin/login", a.AdminLogin)
	g.POST("/refresh", a.Refresh)
	// Logout works with a refresh token in the body and needs no JWT.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleBusiness, handler.RoleAdmin),
	)
	auth.GET("/me", a.Me)
	// Authenticated logout without a body revokes every session.
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints: active
// promotions and the public face of a business behind a scanned biz_ code.
func RegisterPublic(e *echo.Echo, d *handler.DiscountHandler) {
	e.GET("/v1/discounts", d.ListPublic)
	e.GET("/v1/businesses/:token", d.PublicBusiness)
}

// Middlewares bundles the Redis-backed middleware built once at startup and
// shared across route groups.
type Middlewares struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// NewMiddlewares constructs the shared middleware set.  With a nil Redis
// client both degrade to pass-through.
func NewMiddlewares(rdb *redis.Client) Middlewares {
	return Middlewares{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}
}
