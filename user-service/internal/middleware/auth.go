package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/Walid-hh/PFA/pkg/token"
	"github.com/Walid-hh/PFA/user-service/internal/repository"
	"github.com/labstack/echo/v4"
)

const subjectKey = "auth.subject"

// RequireAuth resolves the bearer token to its subject (the account email)
// and stashes it on the context. The account is re-read on every request so
// an outstanding token stops working the moment the account is deactivated.
// Every failure collapses to the same 401.
func RequireAuth(tokens *token.Service, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			subject, err := tokens.Validate(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			user, err := users.FindByEmail(c.Request().Context(), subject)
			if err != nil {
				log.Printf("[Auth] No account for token subject %s: %v", subject, err)
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !user.IsActive() {
				log.Printf("[Auth] Rejected token for deactivated account %s", subject)
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			c.Set(subjectKey, subject)
			return next(c)
		}
	}
}

// Subject returns the authenticated account email, or "" when anonymous.
func Subject(c echo.Context) string {
	s, _ := c.Get(subjectKey).(string)
	return s
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}
