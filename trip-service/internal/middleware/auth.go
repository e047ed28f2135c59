package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/Walid-hh/PFA/pkg/token"
	"github.com/Walid-hh/PFA/trip-service/internal/repository"
	"github.com/labstack/echo/v4"
)

const actorKey = "auth.actor"

// Actor is the resolved identity behind a request, looked up from the user
// profile read model kept in sync by the user service events.
type Actor struct {
	ID       uint
	Email    string
	IsDriver bool
}

// Authenticate resolves a bearer token into an Actor. Requests without an
// Authorization header pass through anonymous; routes that need identity
// layer RequireAuth or RequireDriver on top.
func Authenticate(tokens *token.Service, profiles repository.UserProfileRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return next(c)
			}

			subject, err := tokens.Validate(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			profile, err := profiles.FindByEmail(c.Request().Context(), subject)
			if err != nil {
				log.Printf("[Auth] No profile for token subject %s: %v", subject, err)
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
			}
			if !profile.IsActive() {
				return echo.NewHTTPError(http.StatusUnauthorized, "account is deactivated")
			}

			c.Set(actorKey, &Actor{
				ID:       profile.ID,
				Email:    profile.Email,
				IsDriver: profile.IsDriver,
			})
			return next(c)
		}
	}
}

// RequireAuth rejects requests that did not authenticate.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ActorFrom(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

// RequireDriver rejects requests whose actor is not a driver.
func RequireDriver(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor := ActorFrom(c)
		if actor == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		if !actor.IsDriver {
			return echo.NewHTTPError(http.StatusForbidden, "driver account required")
		}
		return next(c)
	}
}

// ActorFrom returns the request's actor, or nil for anonymous requests.
func ActorFrom(c echo.Context) *Actor {
	actor, _ := c.Get(actorKey).(*Actor)
	return actor
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
