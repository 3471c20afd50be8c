package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

type memoryPostingHistoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries []models.PostingHistory
}

// NewMemoryPostingHistoryRepository keeps the posting history in process
// memory. Entries are lost on restart.
func NewMemoryPostingHistoryRepository() PostingHistoryRepository {
	return &memoryPostingHistoryRepository{}
}

func (r *memoryPostingHistoryRepository) CreateBatch(ctx context.Context, entries []*models.PostingHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, e := range entries {
		r.nextID++
		e.ID = r.nextID
		e.CreatedAt = now
		r.entries = append(r.entries, *e)
	}
	return nil
}

func (r *memoryPostingHistoryRepository) List(ctx context.Context, limit int) ([]*models.PostingHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.PostingHistory
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		out = append(out, &e)
	}
	return out, nil
}

func (r *memoryPostingHistoryRepository) StatsByPlatform(ctx context.Context) ([]*models.PlatformStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byPlatform := make(map[models.Platform]*models.PlatformStats)
	for _, e := range r.entries {
		s, ok := byPlatform[e.Platform]
		if !ok {
			s = &models.PlatformStats{Platform: e.Platform}
			byPlatform[e.Platform] = s
		}
		s.Total++
		if e.Success {
			s.Successful++
		}
		if e.Simulated {
			s.Simulated++
		}
	}

	out := make([]*models.PlatformStats, 0, len(byPlatform))
	for _, s := range byPlatform {
		s.Failed = s.Total - s.Successful
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}
