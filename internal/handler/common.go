package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getBusinessID
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types
)

// getBusinessID extracts the authenticated business ID from echo.Context
// and converts it to uint64.  JWTAuth stores the JWT subject under
// "business_id"; numeric JWT claims decode as float64.
func getBusinessID(c echo.Context) (uint64, error) {
	v := c.Get("business_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid business_id in context")
}

// requestLang picks the response language from the Accept-Language header.
// Only the primary subtag matters; the translator falls back to the default
// language for anything it does not know.
func requestLang(c echo.Context) string {
	lang := c.Request().Header.Get("Accept-Language")
	if len(lang) >= 2 {
		return lang[:2]
	}
	return ""
}
