package service

import (
	"context"
	"sync"

	"github.com/maheshrc27/autopost/internal/models"
)

type progressKey struct{}

// publishProgress holds the furthest state a publisher reached, so a timed
// out dispatch can still report it.
type publishProgress struct {
	mu    sync.Mutex
	state models.PublishState
}

func withProgress(ctx context.Context) (context.Context, *publishProgress) {
	p := &publishProgress{state: models.StatePending}
	return context.WithValue(ctx, progressKey{}, p), p
}

func (p *publishProgress) State() models.PublishState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// reportState records state on the dispatch tracking ctx, if any.
func reportState(ctx context.Context, state models.PublishState) {
	p, ok := ctx.Value(progressKey{}).(*publishProgress)
	if !ok {
		return
	}
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}
