package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/queue"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/internal/transfer"
)

type PublishHandler struct {
	ps     service.PublishService
	ts     service.TrackerService
	client queue.Enqueuer
}

func NewPublishHandler(ps service.PublishService, ts service.TrackerService, client queue.Enqueuer) *PublishHandler {
	return &PublishHandler{ps: ps, ts: ts, client: client}
}

// Publish runs a batch immediately, or enqueues it when scheduled_at is set.
func (h *PublishHandler) Publish(c *fiber.Ctx) error {
	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "Unable to parse request body")
	}
	if len(req.Posts) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "At least one post is required")
	}

	if req.ScheduledAt != "" {
		return h.schedule(c, req)
	}

	var summary *models.PublishSummary
	if len(req.Credentials) > 0 {
		creds, err := credentialMap(req.Credentials)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		summary = h.ps.Publish(c.UserContext(), req.Posts, creds)
	} else {
		var err error
		summary, err = h.ps.PublishStored(c.UserContext(), req.Posts)
		if err != nil {
			slog.Info(err.Error())
			return errorJSON(c, fiber.StatusInternalServerError, "Unable to load credentials")
		}
	}

	if _, err := h.ts.Record(c.UserContext(), req.Posts, summary); err != nil {
		slog.Warn("unable to record publish batch", "error", err)
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *PublishHandler) schedule(c *fiber.Ctx, req transfer.PublishRequest) error {
	if h.client == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Scheduling is not available")
	}
	if len(req.Credentials) > 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Scheduled batches use stored credentials only")
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "scheduled_at must be an RFC3339 timestamp")
	}

	info, err := queue.EnqueuePublish(h.client, queue.PublishBatchPayload{Posts: req.Posts}, time.Until(scheduledAt))
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Error scheduling post")
	}

	return c.Status(fiber.StatusAccepted).JSON(transfer.ScheduledPublishResponse{
		TaskID:      info.ID,
		ScheduledAt: scheduledAt.UTC().Format(time.RFC3339),
		Message:     "Post scheduled successfully",
	})
}

func credentialMap(in map[string]models.PlatformCredential) (map[models.Platform]models.PlatformCredential, error) {
	out := make(map[models.Platform]models.PlatformCredential, len(in))
	for name, cred := range in {
		p, err := models.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		cred.Platform = p
		out[p] = cred
	}
	return out, nil
}
