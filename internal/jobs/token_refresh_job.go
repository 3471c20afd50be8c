package job

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/robfig/cron"
)

const (
	RefreshSchedule = "@every 10m"
	refreshWindow   = 30 * time.Minute
)

type TokenRefreshJob struct {
	cs service.CredentialService
	yt service.YoutubeService
}

func NewTokenRefreshJob(cs service.CredentialService, yt service.YoutubeService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cs: cs,
		yt: yt,
	}
}

func (j *TokenRefreshJob) Register(c *cron.Cron) error {
	return c.AddFunc(RefreshSchedule, j.RefreshTokens)
}

func (j *TokenRefreshJob) RefreshTokens() {
	j.refresh(context.Background(), time.Now())
}

// refresh renews the YouTube tokens expiring within the refresh window and
// returns how many were renewed.
func (j *TokenRefreshJob) refresh(ctx context.Context, now time.Time) int {
	creds, err := j.cs.Expiring(ctx, models.PlatformYouTube, now.Add(refreshWindow))
	if err != nil {
		slog.Info(err.Error())
		return 0
	}

	var wg sync.WaitGroup
	var refreshed atomic.Int32

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, cred := range creds {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(cred *models.PlatformCredential) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.yt.RefreshYoutubeToken(ctx, cred); err != nil {
				slog.Info("Unable to refresh tokens for YouTube", "error", err)
				return
			}
			refreshed.Add(1)
		}(cred)
	}

	wg.Wait()
	return int(refreshed.Load())
}
