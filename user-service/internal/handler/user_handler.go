package handler

import (
	"errors"
	"net/http"

	"github.com/Walid-hh/PFA/pkg/token"
	"github.com/Walid-hh/PFA/user-service/internal/dto"
	"github.com/Walid-hh/PFA/user-service/internal/middleware"
	"github.com/Walid-hh/PFA/user-service/internal/repository"
	"github.com/Walid-hh/PFA/user-service/internal/service"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo, tokens *token.Service, users repository.UserRepository) {
	g := e.Group("/api/users", middleware.RequireAuth(tokens, users))
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeactivateAccount)
	g.PUT("/password", h.ChangePassword)
	g.POST("/become-driver", h.BecomeDriver)
	g.GET("/stats", h.GetStats)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.users.GetByEmail(c.Request().Context(), middleware.Subject(c))
	if err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), middleware.Subject(c), service.ProfilePatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Bio:         req.Bio,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req dto.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := h.users.ChangePassword(c.Request().Context(), middleware.Subject(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *UserHandler) BecomeDriver(c echo.Context) error {
	var req dto.BecomeDriverRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.BecomeDriver(c.Request().Context(), middleware.Subject(c), req.DriverLicense)
	if err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) DeactivateAccount(c echo.Context) error {
	if err := h.users.Deactivate(c.Request().Context(), middleware.Subject(c)); err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "account deactivated"})
}

func (h *UserHandler) GetStats(c echo.Context) error {
	user, err := h.users.GetByEmail(c.Request().Context(), middleware.Subject(c))
	if err != nil {
		return mapUserError(err)
	}
	return c.JSON(http.StatusOK, dto.ToStatsResponse(user))
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidDate):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrDuplicatePhone),
		errors.Is(err, service.ErrDuplicateLicense),
		errors.Is(err, service.ErrAlreadyDriver):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
