package shared

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("secret")

func newGuardedApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler, DisableStartupMessage: true})
	app.Get("/me", JWTUserMiddleware(testSecret), func(c *fiber.Ctx) error {
		return c.SendString(GetUserIdFromContext(c))
	})
	return app
}

func TestJWTUserMiddleware(t *testing.T) {
	app := newGuardedApp()

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateJWTForUser(testSecret, "user-1", time.Now().Add(time.Hour))
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		body, _ := io.ReadAll(res.Body)
		assert.Equal(t, "user-1", string(body))
	})

	t.Run("missing header", func(t *testing.T) {
		res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateJWTForUser([]byte("other"), "user-1", time.Now().Add(time.Hour))
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateJWTForUser(testSecret, "user-1", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})
}

func TestDevOnlyMiddleware(t *testing.T) {
	newApp := func(env string) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler, DisableStartupMessage: true})
		app.Post("/dev", DevOnlyMiddleware(env), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
		return app
	}

	res, err := newApp("development").Test(httptest.NewRequest(fiber.MethodPost, "/dev", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, res.StatusCode)

	res, err = newApp(ProductionEnv).Test(httptest.NewRequest(fiber.MethodPost, "/dev", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, res.StatusCode)
}
