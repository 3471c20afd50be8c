package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/pkg/utils"
)

const oauthStateDuration = 10 * time.Minute

type PlatformHandler struct {
	cs  service.CredentialService
	yt  service.YoutubeService
	cfg config.Config
}

func NewPlatformHandler(cs service.CredentialService, yt service.YoutubeService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		cs:  cs,
		yt:  yt,
		cfg: cfg,
	}
}

// ConnectYoutube starts the Google consent flow. The state value is a short
// lived signed token so the callback can reject forged redirects.
func (h *PlatformHandler) ConnectYoutube(c *fiber.Ctx) error {
	state, err := utils.GenerateToken(h.cfg.SecretKey, GetOperator(c), string(models.PlatformYouTube), oauthStateDuration)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "something went wrong")
	}

	authURL, err := h.yt.AuthURL(state)
	if err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusServiceUnavailable, "YouTube OAuth is not configured")
	}
	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) YoutubeCallback(c *fiber.Ctx) error {
	if msg := c.Query("error"); msg != "" {
		return errorJSON(c, fiber.StatusBadRequest, msg)
	}

	claims, err := utils.ValidateToken(h.cfg.SecretKey, c.Query("state"))
	if err != nil || claims.Platform != string(models.PlatformYouTube) {
		return errorJSON(c, fiber.StatusBadRequest, "Unable to validate state")
	}

	if err := h.yt.YoutubeCallback(c.Context(), c.Query("code")); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Something went wrong")
	}

	slog.Info("youtube connected", "operator", claims.Operator)
	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) YoutubeChannel(c *fiber.Ctx) error {
	cred, err := h.cs.Get(c.Context(), models.PlatformYouTube)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "YouTube is not configured")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to load credential")
	}

	channelID := c.Query("channel_id", cred.ChannelID)
	if channelID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "channel_id is required")
	}

	info, err := h.yt.ChannelInfo(c.Context(), channelID, cred.APIKey)
	if err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return errorJSON(c, fiber.StatusBadGateway, "Unable to fetch channel info")
	}
	return c.Status(fiber.StatusOK).JSON(info)
}
