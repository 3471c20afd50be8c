package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/api/middleware"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
)

const sessionDuration = 24 * time.Hour

type AuthHandler struct {
	auth *middleware.AuthMiddleware
	cfg  config.Config
}

func NewAuthHandler(cfg config.Config, auth *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

// Login exchanges the configured API key for a session cookie so the
// dashboard does not have to keep the key in the browser.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req transfer.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	if h.cfg.SecretKey == "" {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Sessions are not configured")
	}
	if !h.auth.ValidAPIKey(req.APIKey) {
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid API key")
	}

	operator := req.Operator
	if operator == "" {
		operator = "operator"
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, operator, "", sessionDuration)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "something went wrong")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(sessionDuration),
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"operator": operator,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:   h.cfg.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
