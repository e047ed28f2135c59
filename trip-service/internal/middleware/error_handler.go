package middleware

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as {"message": ...}. Unexpected errors
// are logged with their cause and masked in the response.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "an internal error occurred"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if code == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
		message = "an internal error occurred"
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"message": message})
}
