package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

const TaskTypePublishAttempt = "publish:attempt"

type PublishAttemptPayload struct {
	PublicationID int64 `json:"publication_id"`
}

// EnqueuePublication schedules a delayed publish task for the moment the
// publication is due. The poller remains the backstop if the task is lost.
func EnqueuePublication(asynqClient *asynq.Client, payload PublishAttemptPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishAttempt, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	log.Printf("Publish task scheduled: %+v", payload)
	return nil
}
