package service

import (
	"context"
	"encoding/json"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
)

type TiktokService interface {
	Publisher
}

type tiktokService struct{}

func NewTiktokService() TiktokService {
	return &tiktokService{}
}

func (s *tiktokService) Platform() models.Platform {
	return models.PlatformTikTok
}

// Publish does not reach TikTok. It reports a simulated success together with
// the direct post request that would have been sent.
func (s *tiktokService) Publish(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	if err := post.Validate(); err != nil {
		return models.Failed(s.Platform(), models.StatePending, err.Error())
	}

	preview := transfer.TiktokPublishPreview{
		Title:      post.Caption(),
		Source:     "PULL_FROM_URL",
		MediaType:  "PHOTO",
		PrivacyLvl: "PUBLIC_TO_EVERYONE",
	}
	if post.VideoURL != "" {
		preview.MediaType = "VIDEO"
		preview.VideoURL = post.VideoURL
	} else if len(post.Images) > 0 {
		preview.PhotoURLs = post.Images
	} else if post.ImageURL != "" {
		preview.PhotoURLs = []string{post.ImageURL}
	}

	raw, _ := json.Marshal(preview)
	return simulatedResult(s.Platform(), raw)
}

func simulatedResult(platform models.Platform, raw json.RawMessage) models.PublishResult {
	return models.PublishResult{
		Success:   true,
		Platform:  platform,
		Simulated: true,
		State:     models.StatePublished,
		Message:   platform.DisplayName() + " posting not yet implemented",
		Raw:       raw,
	}
}
