package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/Walid-hh/PFA/pkg/token"
	"github.com/Walid-hh/PFA/user-service/internal/dto"
	"github.com/Walid-hh/PFA/user-service/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	users  service.UserService
	tokens *token.Service
}

func NewAuthHandler(users service.UserService, tokens *token.Service) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateEmail), errors.Is(err, service.ErrDuplicatePhone):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return err
		}
	}

	return c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// Login collapses every authentication failure into one response so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrAccountInactive),
			errors.Is(err, service.ErrWrongPassword):
			log.Printf("[Auth] login denied for %s: %v", req.Email, err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		default:
			return err
		}
	}

	signed, err := h.tokens.Issue(user.Email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.AuthResponse{
		Token: signed,
		User:  dto.ToUserResponse(user),
	})
}
