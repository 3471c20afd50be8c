package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/pkg/utils"
)

type CredentialService interface {
	Get(ctx context.Context, platform models.Platform) (*models.PlatformCredential, error)
	List(ctx context.Context) ([]*models.PlatformCredential, error)
	All(ctx context.Context) (map[models.Platform]models.PlatformCredential, error)
	EnabledPlatforms(ctx context.Context) ([]models.Platform, error)
	Save(ctx context.Context, cred *models.PlatformCredential) error
	SetToken(ctx context.Context, platform models.Platform, accessToken, refreshToken string, expiresAt time.Time) error
	Expiring(ctx context.Context, platform models.Platform, before time.Time) ([]*models.PlatformCredential, error)
}

type credentialService struct {
	repo repository.CredentialRepository
	key  []byte
}

// NewCredentialService encrypts secrets at rest with SECRET_KEY. Without a
// key the secrets are stored as given.
func NewCredentialService(cfg config.Config, repo repository.CredentialRepository) CredentialService {
	s := &credentialService{repo: repo}
	if cfg.SecretKey != "" {
		s.key = []byte(cfg.SecretKey)
	} else {
		slog.Warn("SECRET_KEY not set, credentials are stored unencrypted")
	}
	return s
}

func (s *credentialService) Get(ctx context.Context, platform models.Platform) (*models.PlatformCredential, error) {
	cred, err := s.repo.Get(ctx, platform)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, repository.ErrCredentialNotFound
	}
	if err := s.decrypt(cred); err != nil {
		return nil, err
	}
	return cred, nil
}

func (s *credentialService) List(ctx context.Context) ([]*models.PlatformCredential, error) {
	creds, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range creds {
		if err := s.decrypt(c); err != nil {
			return nil, err
		}
	}
	return creds, nil
}

// All returns the decrypted credentials keyed by platform, the shape the
// orchestrator consumes.
func (s *credentialService) All(ctx context.Context) (map[models.Platform]models.PlatformCredential, error) {
	creds, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[models.Platform]models.PlatformCredential, len(creds))
	for _, c := range creds {
		out[c.Platform] = *c
	}
	return out, nil
}

func (s *credentialService) EnabledPlatforms(ctx context.Context) ([]models.Platform, error) {
	creds, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var platforms []models.Platform
	for _, p := range models.Platforms {
		if c, ok := creds[p]; ok && c.Ready() {
			platforms = append(platforms, p)
		}
	}
	return platforms, nil
}

// Save stores cred. Secret fields still masked keep the stored value, so a
// client can round trip what List returned. An empty secret clears it.
func (s *credentialService) Save(ctx context.Context, cred *models.PlatformCredential) error {
	if _, err := models.ParsePlatform(string(cred.Platform)); err != nil {
		return err
	}

	existing, err := s.Get(ctx, cred.Platform)
	if err != nil && !errors.Is(err, repository.ErrCredentialNotFound) {
		return err
	}

	toStore := *cred
	if existing != nil {
		toStore.AccessToken = keepSecret(cred.AccessToken, existing.AccessToken)
		toStore.RefreshToken = keepSecret(cred.RefreshToken, existing.RefreshToken)
		toStore.APIKey = keepSecret(cred.APIKey, existing.APIKey)
		toStore.AppSecret = keepSecret(cred.AppSecret, existing.AppSecret)
		if toStore.TokenExpiresAt.IsZero() {
			toStore.TokenExpiresAt = existing.TokenExpiresAt
		}
	}

	if err := s.encrypt(&toStore); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, &toStore)
}

func (s *credentialService) SetToken(ctx context.Context, platform models.Platform, accessToken, refreshToken string, expiresAt time.Time) error {
	encAccess, err := s.seal(accessToken)
	if err != nil {
		return err
	}
	encRefresh, err := s.seal(refreshToken)
	if err != nil {
		return err
	}
	return s.repo.SetToken(ctx, platform, encAccess, encRefresh, expiresAt)
}

// Expiring lists the platform's credentials whose token expires before the
// given time.
func (s *credentialService) Expiring(ctx context.Context, platform models.Platform, before time.Time) ([]*models.PlatformCredential, error) {
	creds, err := s.repo.ListExpiring(ctx, before)
	if err != nil {
		return nil, err
	}
	var out []*models.PlatformCredential
	for _, c := range creds {
		if c.Platform != platform {
			continue
		}
		if err := s.decrypt(c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *credentialService) encrypt(c *models.PlatformCredential) error {
	var err error
	if c.AccessToken, err = s.seal(c.AccessToken); err != nil {
		return fmt.Errorf("encrypting access token: %w", err)
	}
	if c.RefreshToken, err = s.seal(c.RefreshToken); err != nil {
		return fmt.Errorf("encrypting refresh token: %w", err)
	}
	if c.APIKey, err = s.seal(c.APIKey); err != nil {
		return fmt.Errorf("encrypting api key: %w", err)
	}
	if c.AppSecret, err = s.seal(c.AppSecret); err != nil {
		return fmt.Errorf("encrypting app secret: %w", err)
	}
	return nil
}

func (s *credentialService) decrypt(c *models.PlatformCredential) error {
	var err error
	if c.AccessToken, err = s.open(c.AccessToken); err != nil {
		return fmt.Errorf("decrypting %s access token: %w", c.Platform, err)
	}
	if c.RefreshToken, err = s.open(c.RefreshToken); err != nil {
		return fmt.Errorf("decrypting %s refresh token: %w", c.Platform, err)
	}
	if c.APIKey, err = s.open(c.APIKey); err != nil {
		return fmt.Errorf("decrypting %s api key: %w", c.Platform, err)
	}
	if c.AppSecret, err = s.open(c.AppSecret); err != nil {
		return fmt.Errorf("decrypting %s app secret: %w", c.Platform, err)
	}
	return nil
}

func (s *credentialService) seal(value string) (string, error) {
	if s.key == nil {
		return value, nil
	}
	return utils.EncryptField(value, s.key)
}

func (s *credentialService) open(value string) (string, error) {
	if s.key == nil {
		return value, nil
	}
	return utils.DecryptField(value, s.key)
}

func keepSecret(incoming, stored string) string {
	if strings.HasPrefix(incoming, "****") {
		return stored
	}
	return incoming
}
