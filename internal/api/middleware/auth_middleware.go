package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/pkg/utils"
)

const (
	APIKeyHeader = "X-API-Key"
	OperatorKey  = "operator"
)

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	if cfg.APIKey == "" && cfg.SecretKey == "" {
		slog.Warn("API_KEY and SECRET_KEY are empty, /api is not protected")
	}
	return &AuthMiddleware{cfg: cfg}
}

// AuthMiddleware accepts the configured API key from the X-API-Key header or
// the api_key query parameter, or a session cookie issued by /login.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.cfg.APIKey == "" && m.cfg.SecretKey == "" {
			c.Locals(OperatorKey, "anonymous")
			return c.Next()
		}

		apiKey := c.Get(APIKeyHeader)
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}
		tokenString := c.Cookies(m.cfg.CookieName)

		if tokenString == "" && apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Keys or cookies",
			})
		}

		if apiKey != "" {
			if !m.ValidAPIKey(apiKey) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid API key",
				})
			}
			c.Locals(OperatorKey, "api_key")
			return c.Next()
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil {
			c.Cookie(&fiber.Cookie{
				Name:   m.cfg.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})

			slog.Info("Token validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(OperatorKey, claims.Operator)
		return c.Next()
	}
}

func (m *AuthMiddleware) ValidAPIKey(key string) bool {
	if m.cfg.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.cfg.APIKey)) == 1
}
