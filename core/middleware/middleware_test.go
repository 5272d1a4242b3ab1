package middleware_test

import (
	"net/http/httptest"
	"testing"

	"consent-manager/core/middleware/auth"
	"consent-manager/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayID(t *testing.T) {
	app := fiber.New()
	app.Use(rayid.New())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(rayid.LocalsKey).(string))
	})

	t.Run("Generates", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		_, err = uuid.Parse(resp.Header.Get(rayid.Header))
		assert.NoError(t, err)
	})

	t.Run("Propagates", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(rayid.Header, "upstream-id")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "upstream-id", resp.Header.Get(rayid.Header))
	})
}

func TestAuth(t *testing.T) {
	newApp := func(key string) *fiber.App {
		app := fiber.New()
		app.Use(auth.New(auth.Config{ApiKey: key, Skip: []string{"/metrics"}}))
		app.Get("/*", func(c *fiber.Ctx) error { return c.SendString("ok") })
		return app
	}

	tests := []struct {
		name   string
		key    string
		path   string
		header string
		want   int
	}{
		{"Disabled", "", "/consents", "", fiber.StatusOK},
		{"Missing Key", "secret", "/consents", "", fiber.StatusUnauthorized},
		{"Wrong Key", "secret", "/consents", "nope", fiber.StatusUnauthorized},
		{"Valid Key", "secret", "/consents", "secret", fiber.StatusOK},
		{"Skipped Path", "secret", "/metrics", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(auth.Header, tt.header)
			}
			resp, err := newApp(tt.key).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
