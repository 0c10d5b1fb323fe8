package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/talentwire/socialcast/internal/queue"
	"github.com/talentwire/socialcast/internal/service"
	"github.com/talentwire/socialcast/internal/transfer"
)

type PublicationHandler struct {
	s           service.PublicationService
	AsynqClient *asynq.Client
}

func NewPublicationHandler(s service.PublicationService, asynqClient *asynq.Client) *PublicationHandler {
	return &PublicationHandler{s: s, AsynqClient: asynqClient}
}

func (h *PublicationHandler) CreatePublication(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)

	var pc transfer.PublicationCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	pub, delay, err := h.s.Schedule(c.Context(), tenantID, &pc)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, service.ErrContentNotPublishable) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err = queue.EnqueuePublication(h.AsynqClient, queue.PublishAttemptPayload{PublicationID: pub.ID}, delay)
	if err != nil {
		// The poller will still pick the row up when it comes due.
		slog.Info(err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(pub)
}

func (h *PublicationHandler) ListPublications(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)

	publications, err := h.s.List(c.Context(), tenantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list publications",
		})
	}

	return c.Status(fiber.StatusOK).JSON(publications)
}

func (h *PublicationHandler) PublicationInfo(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	publicationID, err := c.ParamsInt("id", 0)
	if err != nil || publicationID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid publication id",
		})
	}

	pub, err := h.s.Info(c.Context(), tenantID, int64(publicationID))
	if err != nil {
		if errors.Is(err, service.ErrPublicationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Publication not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load publication",
		})
	}

	return c.Status(fiber.StatusOK).JSON(pub)
}
