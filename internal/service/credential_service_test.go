package service

import (
	"context"
	"testing"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func TestCredentialService_EncryptsSecretsAtRest(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCredentialRepository()
	svc := NewCredentialService(config.Config{SecretKey: testSecretKey}, repo)

	cred := facebookCred()
	require.NoError(t, svc.Save(ctx, &cred))

	stored, err := repo.Get(ctx, models.PlatformFacebook)
	require.NoError(t, err)
	assert.NotEqual(t, "fb-token", stored.AccessToken)
	assert.NotEqual(t, "fb-secret", stored.AppSecret)
	assert.Equal(t, "page1", stored.PageID)
	assert.Empty(t, stored.RefreshToken)

	got, err := svc.Get(ctx, models.PlatformFacebook)
	require.NoError(t, err)
	assert.Equal(t, "fb-token", got.AccessToken)
	assert.Equal(t, "fb-secret", got.AppSecret)
}

func TestCredentialService_MaskedSecretsKeepStoredValue(t *testing.T) {
	ctx := context.Background()
	svc := NewCredentialService(config.Config{SecretKey: testSecretKey}, repository.NewMemoryCredentialRepository())

	cred := facebookCred()
	require.NoError(t, svc.Save(ctx, &cred))

	update := cred.Masked()
	update.PageID = "page2"
	require.NoError(t, svc.Save(ctx, &update))

	got, err := svc.Get(ctx, models.PlatformFacebook)
	require.NoError(t, err)
	assert.Equal(t, "page2", got.PageID)
	assert.Equal(t, "fb-token", got.AccessToken)
	assert.Equal(t, "fb-secret", got.AppSecret)

	update.AccessToken = "fb-token-2"
	require.NoError(t, svc.Save(ctx, &update))
	got, err = svc.Get(ctx, models.PlatformFacebook)
	require.NoError(t, err)
	assert.Equal(t, "fb-token-2", got.AccessToken)
}

func TestCredentialService_EmptySecretClears(t *testing.T) {
	ctx := context.Background()
	svc := NewCredentialService(config.Config{SecretKey: testSecretKey}, repository.NewMemoryCredentialRepository())

	cred := facebookCred()
	require.NoError(t, svc.Save(ctx, &cred))

	update := cred.Masked()
	update.AppSecret = ""
	require.NoError(t, svc.Save(ctx, &update))

	got, err := svc.Get(ctx, models.PlatformFacebook)
	require.NoError(t, err)
	assert.Empty(t, got.AppSecret)
	assert.Equal(t, "fb-token", got.AccessToken)
	assert.False(t, got.Ready())
}

func TestCredentialService_RejectsUnknownPlatform(t *testing.T) {
	svc := NewCredentialService(config.Config{}, repository.NewMemoryCredentialRepository())

	err := svc.Save(context.Background(), &models.PlatformCredential{Platform: "myspace"})
	assert.Error(t, err)
}

func TestCredentialService_GetMissing(t *testing.T) {
	svc := NewCredentialService(config.Config{}, repository.NewMemoryCredentialRepository())

	_, err := svc.Get(context.Background(), models.PlatformTikTok)
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}

func TestCredentialService_AllAndEnabledPlatforms(t *testing.T) {
	ctx := context.Background()
	svc := NewCredentialService(config.Config{SecretKey: testSecretKey}, repository.NewMemoryCredentialRepository())

	fb := facebookCred()
	ig := instagramCred()
	ig.Enabled = false
	yt := youtubeCred()
	for _, c := range []*models.PlatformCredential{&fb, &ig, &yt} {
		require.NoError(t, svc.Save(ctx, c))
	}

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "ig-token", all[models.PlatformInstagram].AccessToken)

	enabled, err := svc.EnabledPlatforms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Platform{models.PlatformFacebook, models.PlatformYouTube}, enabled)
}

func TestCredentialService_SetTokenAndExpiring(t *testing.T) {
	ctx := context.Background()
	svc := NewCredentialService(config.Config{SecretKey: testSecretKey}, repository.NewMemoryCredentialRepository())

	yt := youtubeCred()
	yt.AccessToken = "old"
	yt.RefreshToken = "refresh"
	yt.TokenExpiresAt = time.Now().Add(10 * time.Minute)
	require.NoError(t, svc.Save(ctx, &yt))

	expiring, err := svc.Expiring(ctx, models.PlatformYouTube, time.Now().Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "refresh", expiring[0].RefreshToken)

	require.NoError(t, svc.SetToken(ctx, models.PlatformYouTube, "new", "", time.Now().Add(time.Hour)))

	expiring, err = svc.Expiring(ctx, models.PlatformYouTube, time.Now().Add(30*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, expiring)

	got, err := svc.Get(ctx, models.PlatformYouTube)
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
}

func TestCredentialService_SetTokenUnknownCredential(t *testing.T) {
	svc := NewCredentialService(config.Config{SecretKey: testSecretKey}, repository.NewMemoryCredentialRepository())

	err := svc.SetToken(context.Background(), models.PlatformYouTube, "a", "b", time.Now())
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}
