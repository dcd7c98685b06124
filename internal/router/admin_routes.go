package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/avelora/qr-loyalty/internal/handler"
	"github.com/avelora/qr-loyalty/internal/middleware"
)

// RegisterAdmin registers platform-operator endpoints under /v1/admin.
// All routes require a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleAdmin),
	)

	g.POST("/businesses", a.CreateBusiness)
	g.GET("/businesses", a.ListBusinesses)
	g.DELETE("/businesses/:id", a.DeleteBusiness)
}
