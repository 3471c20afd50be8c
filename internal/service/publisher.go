package service

import (
	"context"

	"github.com/maheshrc27/autopost/internal/models"
)

// Publisher translates a normalized post into one platform's API calls.
// Implementations report every failure through the returned result.
type Publisher interface {
	Platform() models.Platform
	Publish(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult
}
