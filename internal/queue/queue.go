package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueuePublish schedules a publish batch. Batches are never retried, a
// failed platform is reported in the stored history instead.
func EnqueuePublish(client Enqueuer, payload PublishBatchPayload, delay time.Duration) (*asynq.TaskInfo, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	if delay < 0 {
		delay = 0
	}

	task := asynq.NewTask(TaskTypePublishBatch, taskPayload)

	info, err := client.Enqueue(task, asynq.ProcessIn(delay), asynq.MaxRetry(0))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	slog.Info("publish batch scheduled", "task_id", info.ID, "posts", len(payload.Posts), "delay", delay)
	return info, nil
}
