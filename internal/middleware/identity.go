package middleware

// identity.go defines helper functions shared across middleware files.
// currentSessionID pulls the authenticated business ID that JWTAuth stored
// in the Echo context.  Unauthenticated traffic (customer displays polling
// by token, public discount listings) is keyed as "anon" so the rate
// limiter still buckets it by IP.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentSessionID returns a stable string identifier for the current
// session, or "anon" when the request carries no authenticated identity.
func currentSessionID(c echo.Context) string {
	v := c.Get("business_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		// JWT numeric claims decode as float64.
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	}
	return "anon"
}
