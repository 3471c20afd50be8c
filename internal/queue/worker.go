package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

var errEmptyBatch = errors.New("publish batch has no posts")

func (j *Queue) HandlePublishTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.Posts) == 0 {
		return fmt.Errorf("%v: %w", errEmptyBatch, asynq.SkipRetry)
	}

	summary, err := j.ps.PublishStored(ctx, payload.Posts)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	batchID, err := j.ts.Record(ctx, payload.Posts, summary)
	if err != nil {
		slog.Warn("unable to record publish batch", "error", err)
	}

	slog.Info("scheduled publish finished",
		"batch_id", batchID,
		"message", summary.Message,
	)
	return nil
}
