package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/talentwire/socialcast/internal/service"
)

type PublishHandler struct {
	executor service.PublishService
	poller   service.PollerService
}

func NewPublishHandler(executor service.PublishService, poller service.PollerService) *PublishHandler {
	return &PublishHandler{executor: executor, poller: poller}
}

// PublishNow triggers a single manual attempt for one publication.
func (h *PublishHandler) PublishNow(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	publicationID, err := c.ParamsInt("id", 0)
	if err != nil || publicationID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid publication id",
		})
	}

	outcome, err := h.executor.Publish(c.Context(), tenantID, int64(publicationID))
	if err != nil {
		status := publishErrorStatus(err)
		body := fiber.Map{"error": err.Error()}
		if outcome != nil {
			body["publication"] = outcome.Publication
		}
		return c.Status(status).JSON(body)
	}

	return c.Status(fiber.StatusOK).JSON(outcome)
}

// RunPoll is the external cron trigger for the due-item batch.
func (h *PublishHandler) RunPoll(c *fiber.Ctx) error {
	summary, err := h.poller.RunOnce(c.Context())
	if err != nil {
		log.Printf("Poll run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Poll run failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

// PollStatus reports the pending backlog for health checks.
func (h *PublishHandler) PollStatus(c *fiber.Ctx) error {
	status, err := h.poller.Pending(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read pending publications",
		})
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

func publishErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPublicationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrPublishingInProgress):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrMaxAttemptsReached),
		errors.Is(err, service.ErrNoProvider),
		errors.Is(err, service.ErrContentNotPublishable):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadGateway
	}
}
