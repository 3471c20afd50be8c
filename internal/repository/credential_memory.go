package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

type memoryCredentialRepository struct {
	mu    sync.RWMutex
	creds map[models.Platform]models.PlatformCredential
}

// NewMemoryCredentialRepository keeps credentials in process memory. It backs
// the server when no database is configured.
func NewMemoryCredentialRepository() CredentialRepository {
	return &memoryCredentialRepository{creds: make(map[models.Platform]models.PlatformCredential)}
}

func (r *memoryCredentialRepository) Get(ctx context.Context, platform models.Platform) (*models.PlatformCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.creds[platform]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memoryCredentialRepository) List(ctx context.Context) ([]*models.PlatformCredential, error) {
	return r.filter(func(models.PlatformCredential) bool { return true }), nil
}

func (r *memoryCredentialRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.PlatformCredential, error) {
	return r.filter(func(c models.PlatformCredential) bool {
		return c.RefreshToken != "" && !c.TokenExpiresAt.IsZero() && c.TokenExpiresAt.Before(before)
	}), nil
}

func (r *memoryCredentialRepository) filter(keep func(models.PlatformCredential) bool) []*models.PlatformCredential {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.PlatformCredential
	for _, c := range r.creds {
		if keep(c) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

func (r *memoryCredentialRepository) Upsert(ctx context.Context, cred *models.PlatformCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *cred
	c.UpdatedAt = time.Now()
	r.creds[c.Platform] = c
	return nil
}

func (r *memoryCredentialRepository) SetToken(ctx context.Context, platform models.Platform, accessToken, refreshToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.creds[platform]
	if !ok {
		return ErrCredentialNotFound
	}
	if accessToken != "" {
		c.AccessToken = accessToken
	}
	if refreshToken != "" {
		c.RefreshToken = refreshToken
	}
	if !expiresAt.IsZero() {
		c.TokenExpiresAt = expiresAt
	}
	c.UpdatedAt = time.Now()
	r.creds[platform] = c
	return nil
}
