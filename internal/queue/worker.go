package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/hibiken/asynq"
	"github.com/talentwire/socialcast/internal/service"
)

type Worker struct {
	executor service.PublishService
}

func NewWorker(executor service.PublishService) *Worker {
	return &Worker{executor: executor}
}

// HandlePublishAttemptTask runs one executor attempt for the queued
// publication. Retry policy belongs to the attempt counter, not to asynq:
// the handler always reports success so a failed attempt waits for the
// next poll tick instead of being re-driven by the queue.
func (w *Worker) HandlePublishAttemptTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishAttemptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	outcome, err := w.executor.Publish(ctx, 0, payload.PublicationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPublishingInProgress):
			// The poller or a manual trigger beat us to it.
		case errors.Is(err, service.ErrPublicationNotFound):
			log.Printf("Queued publication %d no longer exists", payload.PublicationID)
		default:
			log.Printf("Publish attempt for publication %d failed: %v", payload.PublicationID, err)
		}
		return nil
	}

	if outcome != nil && outcome.Success {
		log.Printf("Publication %d published", payload.PublicationID)
	}
	return nil
}
