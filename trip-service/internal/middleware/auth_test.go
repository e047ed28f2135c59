package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Walid-hh/PFA/pkg/token"
	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockProfileRepo struct {
	findByEmailFn func(ctx context.Context, email string) (*models.UserProfile, error)
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *models.UserProfile) error {
	return nil
}

func testTokens(t *testing.T) *token.Service {
	t.Helper()
	tokens, err := token.NewService(token.Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	return tokens
}

func run(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return c, handler(c)
}

func TestAuthenticate_ResolvesActor(t *testing.T) {
	tokens := testTokens(t)
	raw, err := tokens.Issue("alice@example.com")
	require.NoError(t, err)

	profiles := &mockProfileRepo{
		findByEmailFn: func(ctx context.Context, email string) (*models.UserProfile, error) {
			assert.Equal(t, "alice@example.com", email)
			return &models.UserProfile{ID: 42, Email: email, IsDriver: true, Status: "ACTIVE"}, nil
		},
	}

	c, err := run(t, Authenticate(tokens, profiles), "Bearer "+raw)
	require.NoError(t, err)

	actor := ActorFrom(c)
	require.NotNil(t, actor)
	assert.Equal(t, uint(42), actor.ID)
	assert.True(t, actor.IsDriver)
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	c, err := run(t, Authenticate(testTokens(t), &mockProfileRepo{}), "")
	require.NoError(t, err)
	assert.Nil(t, ActorFrom(c))
}

func TestAuthenticate_RejectsBadToken(t *testing.T) {
	_, err := run(t, Authenticate(testTokens(t), &mockProfileRepo{}), "Bearer not-a-token")
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuthenticate_RejectsUnknownProfile(t *testing.T) {
	tokens := testTokens(t)
	raw, err := tokens.Issue("ghost@example.com")
	require.NoError(t, err)

	_, err = run(t, Authenticate(tokens, &mockProfileRepo{}), "Bearer "+raw)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuthenticate_RejectsInactiveProfile(t *testing.T) {
	tokens := testTokens(t)
	raw, err := tokens.Issue("gone@example.com")
	require.NoError(t, err)

	profiles := &mockProfileRepo{
		findByEmailFn: func(ctx context.Context, email string) (*models.UserProfile, error) {
			return &models.UserProfile{ID: 9, Email: email, Status: "INACTIVE"}, nil
		},
	}

	_, err = run(t, Authenticate(tokens, profiles), "Bearer "+raw)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireDriver(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	t.Run("no actor", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		err := RequireDriver(next)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("passenger actor", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set("auth.actor", &Actor{ID: 1})
		err := RequireDriver(next)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("driver actor", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set("auth.actor", &Actor{ID: 1, IsDriver: true})
		require.NoError(t, RequireDriver(next)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
