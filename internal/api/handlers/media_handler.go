package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/service"
)

type MediaHandler struct {
	s service.MediaService
}

func NewMediaHandler(s service.MediaService) *MediaHandler {
	return &MediaHandler{s: s}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No file selected")
	}

	resp, err := h.s.Upload(c.Context(), file)
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(resp)
	case errors.Is(err, service.ErrUnsupportedMedia), errors.Is(err, service.ErrMediaTooLarge):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStorageNotConfigured):
		return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		return errorJSON(c, fiber.StatusInternalServerError, "Error uploading file")
	}
}
