package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/internal/transfer"
)

type ContentHandler struct {
	s service.ContentService
}

func NewContentHandler(s service.ContentService) *ContentHandler {
	return &ContentHandler{s: s}
}

func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	var req transfer.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}

	platforms, err := parsePlatforms(req.Platforms)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	posts, err := h.s.Generate(req.Business, platforms, req.Count)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNameRequired) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusInternalServerError, "Unable to generate content")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts": posts,
	})
}
