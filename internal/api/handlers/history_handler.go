package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/service"
)

type HistoryHandler struct {
	ts service.TrackerService
}

func NewHistoryHandler(ts service.TrackerService) *HistoryHandler {
	return &HistoryHandler{ts: ts}
}

func (h *HistoryHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.ts.History(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch posting history")
	}
	if entries == nil {
		entries = []*models.PostingHistory{}
	}
	return c.Status(fiber.StatusOK).JSON(entries)
}

func (h *HistoryHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.ts.Stats(c.Context())
	if err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to compute statistics")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}
