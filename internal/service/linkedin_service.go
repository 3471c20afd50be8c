package service

import (
	"context"

	"github.com/maheshrc27/autopost/internal/models"
)

type LinkedinService interface {
	Publisher
}

type linkedinService struct{}

func NewLinkedinService() LinkedinService {
	return &linkedinService{}
}

func (s *linkedinService) Platform() models.Platform {
	return models.PlatformLinkedIn
}

// Publish is simulated until the LinkedIn organization share API is wired.
// Malformed posts still fail.
func (s *linkedinService) Publish(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	if err := post.Validate(); err != nil {
		return models.Failed(s.Platform(), models.StatePending, err.Error())
	}
	return simulatedResult(s.Platform(), nil)
}
