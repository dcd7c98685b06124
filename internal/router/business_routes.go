package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/avelora/qr-loyalty/internal/handler"
	"github.com/avelora/qr-loyalty/internal/middleware"
)

// RegisterBusiness registers BUSINESS-scoped endpoints under /v1/business.
// All routes require a valid JWT with the BUSINESS role.  The scan endpoint
// additionally sits behind the rate limiter because a stuck terminal can
// re-submit the same code in a tight loop.
func RegisterBusiness(e *echo.Echo, b *handler.BusinessHandler, d *handler.DiscountHandler, s *handler.ScanHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/business",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleBusiness),
	)

	// ---- Profile and program settings ----
	g.GET("/profile", b.GetProfile)
	g.PUT("/profile", b.UpdateProfile)
	g.GET("/qr", b.QRCode)

	// ---- Members and terminal-issued identities ----
	g.GET("/customers", b.ListMembers)
	g.POST("/customers", b.IssueCustomer)

	// ---- Discounts ----
	g.POST("/discounts", d.Create)
	g.GET("/discounts", d.List)
	g.PUT("/discounts/:id", d.Update)
	g.DELETE("/discounts/:id", d.Delete)

	// ---- Scanning ----
	if limiter != nil {
		g.POST("/scan", s.Scan, limiter)
	} else {
		g.POST("/scan", s.Scan)
	}
}
