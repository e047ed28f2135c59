package middleware

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler shapes every error into {"message": ...}. Unexpected
// failures are logged in full but surfaced as a generic internal error so
// store details never leak to clients.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := ""

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	if code == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
		msg = "an internal error occurred"
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}
