package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/service"
)

type CredentialHandler struct {
	cs service.CredentialService
}

func NewCredentialHandler(cs service.CredentialService) *CredentialHandler {
	return &CredentialHandler{cs: cs}
}

type credentialView struct {
	models.PlatformCredential
	Ready         bool     `json:"ready"`
	MissingFields []string `json:"missing_fields"`
}

func newCredentialView(c models.PlatformCredential) credentialView {
	missing := c.MissingFields()
	if missing == nil {
		missing = []string{}
	}
	return credentialView{
		PlatformCredential: c.Masked(),
		Ready:              c.Ready(),
		MissingFields:      missing,
	}
}

// ListCredentials returns one entry per supported platform with secrets
// masked. Unconfigured platforms are listed as disabled.
func (h *CredentialHandler) ListCredentials(c *fiber.Ctx) error {
	creds, err := h.cs.All(c.Context())
	if err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch credentials")
	}

	views := make([]credentialView, 0, len(models.Platforms))
	for _, p := range models.Platforms {
		cred, ok := creds[p]
		if !ok {
			cred = models.PlatformCredential{Platform: p}
		}
		views = append(views, newCredentialView(cred))
	}
	return c.Status(fiber.StatusOK).JSON(views)
}

func (h *CredentialHandler) UpdateCredential(c *fiber.Ctx) error {
	platform, err := models.ParsePlatform(c.Params("platform"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}

	var cred models.PlatformCredential
	if err := c.BodyParser(&cred); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}
	cred.Platform = platform

	if err := h.cs.Save(c.Context(), &cred); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to save credential")
	}

	saved, err := h.cs.Get(c.Context(), platform)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to load credential")
	}

	slog.Info("credential updated", "platform", platform, "operator", GetOperator(c), "ready", saved.Ready())
	return c.Status(fiber.StatusOK).JSON(newCredentialView(*saved))
}
