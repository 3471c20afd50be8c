package queue

import (
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/service"
)

type Queue struct {
	ps service.PublishService
	ts service.TrackerService
}

func NewQueue(ps service.PublishService, ts service.TrackerService) *Queue {
	return &Queue{
		ps: ps,
		ts: ts,
	}
}

const TaskTypePublishBatch = "publish:batch"

type PublishBatchPayload struct {
	Posts []models.NormalizedPost `json:"posts"`
}
