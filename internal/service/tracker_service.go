package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const defaultHistoryLimit = 50

type TrackerService interface {
	Record(ctx context.Context, posts []models.NormalizedPost, summary *models.PublishSummary) (string, error)
	History(ctx context.Context, limit int) ([]*models.PostingHistory, error)
	Stats(ctx context.Context) (*models.EngagementStats, error)
}

type trackerService struct {
	ph repository.PostingHistoryRepository
}

func NewTrackerService(ph repository.PostingHistoryRepository) TrackerService {
	return &trackerService{ph: ph}
}

// Record stores one history row per result of a publish batch and returns
// the generated batch id.
func (s *trackerService) Record(ctx context.Context, posts []models.NormalizedPost, summary *models.PublishSummary) (string, error) {
	if summary == nil || len(summary.Results) == 0 || len(posts) == 0 {
		return "", nil
	}

	batchID, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	entries := make([]*models.PostingHistory, 0, len(summary.Results))
	for _, r := range summary.Results {
		post := postFor(posts, r.Platform)
		entries = append(entries, &models.PostingHistory{
			BatchID:      batchID,
			Platform:     r.Platform,
			PostType:     post.EffectiveType(),
			Success:      r.Success,
			Simulated:    r.Simulated,
			State:        string(r.State),
			PostID:       r.PostID,
			Caption:      post.Caption(),
			ErrorMessage: r.Error,
		})
	}

	if err := s.ph.CreateBatch(ctx, entries); err != nil {
		return "", fmt.Errorf("recording batch %s: %w", batchID, err)
	}
	return batchID, nil
}

func (s *trackerService) History(ctx context.Context, limit int) ([]*models.PostingHistory, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultHistoryLimit
	}
	return s.ph.List(ctx, limit)
}

// Stats aggregates the history per platform. The best platform is the one
// with the highest rate of real, non simulated, successes.
func (s *trackerService) Stats(ctx context.Context) (*models.EngagementStats, error) {
	platforms, err := s.ph.StatsByPlatform(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.EngagementStats{Platforms: platforms}
	if stats.Platforms == nil {
		stats.Platforms = []*models.PlatformStats{}
	}

	bestRate := -1.0
	bestReal := 0
	for _, p := range platforms {
		p.SuccessRate = rate(p.Successful, p.Total)
		stats.TotalAttempts += p.Total
		stats.Successful += p.Successful
		stats.Failed += p.Failed

		realTotal := p.Total - p.Simulated
		if realTotal <= 0 {
			continue
		}
		realRate := rate(p.Successful-p.Simulated, realTotal)
		if realRate > bestRate || (realRate == bestRate && realTotal > bestReal) {
			bestRate = realRate
			bestReal = realTotal
			stats.BestPlatform = p.Platform
		}
	}
	stats.SuccessRate = rate(stats.Successful, stats.TotalAttempts)
	return stats, nil
}

// rate is a percentage rounded to one decimal.
func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
