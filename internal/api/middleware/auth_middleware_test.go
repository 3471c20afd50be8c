package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	app.Use(NewAuthMiddleware(cfg).AuthMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(OperatorKey).(string))
	})
	return app
}

func authConfig() config.Config {
	return config.Config{APIKey: "key-1", SecretKey: testSecret, CookieName: "autopost_session"}
}

func TestAuthMiddleware(t *testing.T) {
	session, err := utils.GenerateToken(testSecret, "ops@example.com", "", time.Hour)
	require.NoError(t, err)
	otherSession, err := utils.GenerateToken("another-secret-another-secret-00", "ops@example.com", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		cookie string
		want   int
	}{
		{"missing", "", "", "", fiber.StatusUnauthorized},
		{"header key", "key-1", "", "", fiber.StatusOK},
		{"query key", "", "?api_key=key-1", "", fiber.StatusOK},
		{"wrong key", "nope", "", "", fiber.StatusUnauthorized},
		{"session cookie", "", "", session, fiber.StatusOK},
		{"forged cookie", "", "", otherSession, fiber.StatusUnauthorized},
	}

	app := newApp(authConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "autopost_session", Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	app := newApp(config.Config{CookieName: "autopost_session"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
