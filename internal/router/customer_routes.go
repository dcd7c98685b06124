package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/avelora/qr-loyalty/internal/handler"
)

// RegisterCustomer registers the token-keyed customer self-service routes.
// No JWT applies here: the unguessable cust_ token in the path is the
// credential.  The state endpoint is wrapped by the response cache so the
// fixed-interval polling of many displays never turns into one database
// query per display per tick.
func RegisterCustomer(e *echo.Echo, c *handler.CustomerHandler, cache echo.MiddlewareFunc) {
	e.POST("/v1/customers", c.Signup)
	if cache != nil {
		e.GET("/v1/customers/:token", c.GetState, cache)
	} else {
		e.GET("/v1/customers/:token", c.GetState)
	}
	e.PUT("/v1/customers/:token", c.Update)
	e.DELETE("/v1/customers/:token", c.Delete)
	e.GET("/v1/customers/:token/qr", c.QRCode)
	e.GET("/v1/customers/:token/discounts", c.ListDiscounts)
	e.GET("/v1/customers/:token/memberships/:membership_id/events", c.History)
}
