package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
)

const errTimeout = "timeout"

type PublishService interface {
	Publish(ctx context.Context, posts []models.NormalizedPost, creds map[models.Platform]models.PlatformCredential) *models.PublishSummary
	PublishStored(ctx context.Context, posts []models.NormalizedPost) (*models.PublishSummary, error)
}

type publishService struct {
	timeout     time.Duration
	concurrency int
	creds       CredentialService
	metrics     *PublishMetrics
	publishers  map[models.Platform]Publisher
}

func NewPublishService(cfg config.Config, creds CredentialService, metrics *PublishMetrics, publishers ...Publisher) PublishService {
	s := &publishService{
		timeout:     cfg.Publish.Timeout,
		concurrency: cfg.Publish.Concurrency,
		creds:       creds,
		metrics:     metrics,
		publishers:  make(map[models.Platform]Publisher, len(publishers)),
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	if s.concurrency <= 0 {
		s.concurrency = len(models.Platforms)
	}

	for _, p := range publishers {
		s.publishers[p.Platform()] = p
	}
	for _, p := range models.Platforms {
		if _, ok := s.publishers[p]; !ok {
			slog.Warn("no publisher registered", "platform", p)
		}
	}
	return s
}

// Publish dispatches one post to every ready platform and waits for all of
// them. Platforms whose credential is disabled or incomplete are skipped and
// do not count towards the total. Results follow models.Platforms order.
func (s *publishService) Publish(ctx context.Context, posts []models.NormalizedPost, creds map[models.Platform]models.PlatformCredential) *models.PublishSummary {
	if len(posts) == 0 {
		return models.NewPublishSummary(nil)
	}

	// Readiness is judged against the map key; the credential's own
	// Platform field is not trusted.
	var selected []models.Platform
	ready := make(map[models.Platform]models.PlatformCredential, len(creds))
	for _, p := range models.Platforms {
		cred, ok := creds[p]
		if !ok {
			continue
		}
		cred.Platform = p
		if cred.Ready() {
			selected = append(selected, p)
			ready[p] = cred
		}
	}

	results := make([]models.PublishResult, len(selected))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.concurrency)

	for i, platform := range selected {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int, platform models.Platform) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = s.dispatch(ctx, platform, postFor(posts, platform), ready[platform])
		}(i, platform)
	}

	wg.Wait()

	summary := models.NewPublishSummary(results)
	slog.Info("publish batch finished",
		"total", summary.Summary.Total,
		"successful", summary.Summary.Successful,
		"failed", summary.Summary.Failed,
	)
	return summary
}

func (s *publishService) PublishStored(ctx context.Context, posts []models.NormalizedPost) (*models.PublishSummary, error) {
	creds, err := s.creds.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	return s.Publish(ctx, posts, creds), nil
}

// dispatch runs one publisher under the per platform timeout. A hanging
// publisher is left behind; its result is discarded.
func (s *publishService) dispatch(ctx context.Context, platform models.Platform, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	publisher, ok := s.publishers[platform]
	if !ok {
		return models.Failed(platform, models.StateFailed, fmt.Sprintf("no publisher registered for %s", platform))
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ctx, progress := withProgress(ctx)

	done := make(chan models.PublishResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("publisher panicked", "platform", platform, "panic", r)
				done <- models.Failed(platform, models.StateFailed, fmt.Sprintf("publisher panic: %v", r))
			}
		}()
		done <- publisher.Publish(ctx, post, cred)
	}()

	var result models.PublishResult
	select {
	case result = <-done:
		if !result.Success && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.Error = errTimeout
		}
	case <-ctx.Done():
		msg := errTimeout
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = ctx.Err().Error()
		}
		result = models.Failed(platform, progress.State(), msg)
	}

	if result.Platform == "" {
		result.Platform = platform
	}
	if !result.Success {
		slog.Info("publish failed", "platform", platform, "state", result.State, "error", result.Error)
	}

	s.metrics.observe(result, time.Since(start))
	return result
}

// postFor picks the post whose platform hint names p, falling back to the
// first post.
func postFor(posts []models.NormalizedPost, p models.Platform) models.NormalizedPost {
	for _, post := range posts {
		if post.Targets(p) {
			return post
		}
	}
	return posts[0]
}
