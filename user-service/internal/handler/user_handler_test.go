package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Walid-hh/PFA/user-service/internal/dto"
	"github.com/Walid-hh/PFA/user-service/internal/models"
	"github.com/Walid-hh/PFA/user-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authedContext builds a context the way the auth middleware leaves it:
// subject already resolved and stashed.
func authedContext(method, path, body, subject string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("auth.subject", subject)
	return c, rec
}

func TestGetProfile_Handler_Success(t *testing.T) {
	svc := &mockUserService{
		getFn: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 1, Email: email, FirstName: "Alice", Status: models.StatusActive}, nil
		},
	}

	c, rec := authedContext(http.MethodGet, "/api/users/profile", "", "alice@example.com")

	h := NewUserHandler(svc)
	err := h.GetProfile(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.UserResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.Email)
}

func TestGetProfile_Handler_NotFound(t *testing.T) {
	svc := &mockUserService{
		getFn: func(ctx context.Context, email string) (*models.User, error) {
			return nil, service.ErrUserNotFound
		},
	}

	c, _ := authedContext(http.MethodGet, "/api/users/profile", "", "ghost@example.com")

	h := NewUserHandler(svc)
	err := h.GetProfile(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestUpdateProfile_Handler_InvalidDate(t *testing.T) {
	svc := &mockUserService{
		updateFn: func(ctx context.Context, email string, patch service.ProfilePatch) (*models.User, error) {
			return nil, service.ErrInvalidDate
		},
	}

	c, _ := authedContext(http.MethodPut, "/api/users/profile",
		`{"date_of_birth":"31/12/1990"}`, "alice@example.com")

	h := NewUserHandler(svc)
	err := h.UpdateProfile(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestChangePassword_Handler_WrongCurrent(t *testing.T) {
	svc := &mockUserService{
		changePassFn: func(ctx context.Context, email, current, newPassword string) error {
			return service.ErrWrongPassword
		},
	}

	c, _ := authedContext(http.MethodPut, "/api/users/password",
		`{"current_password":"nope","new_password":"newpassword"}`, "alice@example.com")

	h := NewUserHandler(svc)
	err := h.ChangePassword(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestBecomeDriver_Handler_DuplicateLicense(t *testing.T) {
	svc := &mockUserService{
		becomeDriverFn: func(ctx context.Context, email, license string) (*models.User, error) {
			return nil, service.ErrDuplicateLicense
		},
	}

	c, _ := authedContext(http.MethodPost, "/api/users/become-driver",
		`{"driver_license":"DL-12345"}`, "alice@example.com")

	h := NewUserHandler(svc)
	err := h.BecomeDriver(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestDeactivateAccount_Handler_Success(t *testing.T) {
	var deactivated string
	svc := &mockUserService{
		deactivateFn: func(ctx context.Context, email string) error {
			deactivated = email
			return nil
		},
	}

	c, rec := authedContext(http.MethodDelete, "/api/users/profile", "", "alice@example.com")

	h := NewUserHandler(svc)
	err := h.DeactivateAccount(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", deactivated)
}

func TestGetStats_Handler_Success(t *testing.T) {
	svc := &mockUserService{
		getFn: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{
				ID: 1, Email: email, IsDriver: true, IsVerified: true,
				Rating: 4.5, TotalTrips: 12, Status: models.StatusActive,
			}, nil
		},
	}

	c, rec := authedContext(http.MethodGet, "/api/users/stats", "", "alice@example.com")

	h := NewUserHandler(svc)
	err := h.GetStats(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.TotalTrips)
	assert.True(t, resp.IsDriver)
	assert.InDelta(t, 4.5, resp.Rating, 0.001)
}
