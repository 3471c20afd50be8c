package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

var ErrCredentialNotFound = errors.New("no credential stored for platform")

type CredentialRepository interface {
	Get(ctx context.Context, platform models.Platform) (*models.PlatformCredential, error)
	List(ctx context.Context) ([]*models.PlatformCredential, error)
	ListExpiring(ctx context.Context, before time.Time) ([]*models.PlatformCredential, error)
	Upsert(ctx context.Context, cred *models.PlatformCredential) error
	SetToken(ctx context.Context, platform models.Platform, accessToken, refreshToken string, expiresAt time.Time) error
}

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

const credentialColumns = `
	platform,
	enabled,
	page_id,
	business_account_id,
	channel_id,
	organization_id,
	open_id,
	access_token,
	refresh_token,
	api_key,
	app_secret,
	token_expires_at,
	updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.PlatformCredential, error) {
	var c models.PlatformCredential
	var expiresAt sql.NullTime
	err := row.Scan(&c.Platform, &c.Enabled, &c.PageID, &c.BusinessAccountID, &c.ChannelID,
		&c.OrganizationID, &c.OpenID, &c.AccessToken, &c.RefreshToken, &c.APIKey, &c.AppSecret,
		&expiresAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		c.TokenExpiresAt = expiresAt.Time
	}
	return &c, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func (r *credentialRepository) Get(ctx context.Context, platform models.Platform) (*models.PlatformCredential, error) {
	query := `SELECT` + credentialColumns + ` FROM platform_credentials WHERE platform = $1`

	cred, err := scanCredential(r.db.QueryRowContext(ctx, query, platform))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return cred, nil
}

func (r *credentialRepository) List(ctx context.Context) ([]*models.PlatformCredential, error) {
	query := `SELECT` + credentialColumns + ` FROM platform_credentials ORDER BY platform`
	return r.list(ctx, query)
}

// ListExpiring returns credentials holding a refresh token whose access token
// expires before the given time.
func (r *credentialRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.PlatformCredential, error) {
	query := `SELECT` + credentialColumns + ` FROM platform_credentials
		WHERE refresh_token <> '' AND token_expires_at IS NOT NULL AND token_expires_at < $1
		ORDER BY platform`
	return r.list(ctx, query, before)
}

func (r *credentialRepository) list(ctx context.Context, query string, args ...any) ([]*models.PlatformCredential, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var creds []*models.PlatformCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return creds, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, c *models.PlatformCredential) error {
	query := `
		INSERT INTO platform_credentials (
			platform,
			enabled,
			page_id,
			business_account_id,
			channel_id,
			organization_id,
			open_id,
			access_token,
			refresh_token,
			api_key,
			app_secret,
			token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (platform) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			page_id = EXCLUDED.page_id,
			business_account_id = EXCLUDED.business_account_id,
			channel_id = EXCLUDED.channel_id,
			organization_id = EXCLUDED.organization_id,
			open_id = EXCLUDED.open_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			api_key = EXCLUDED.api_key,
			app_secret = EXCLUDED.app_secret,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		c.Platform,
		c.Enabled,
		c.PageID,
		c.BusinessAccountID,
		c.ChannelID,
		c.OrganizationID,
		c.OpenID,
		c.AccessToken,
		c.RefreshToken,
		c.APIKey,
		c.AppSecret,
		nullTime(c.TokenExpiresAt),
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetToken replaces the OAuth tokens of a stored credential. Empty values keep
// the current column value.
func (r *credentialRepository) SetToken(ctx context.Context, platform models.Platform, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE platform_credentials
		SET
			access_token = COALESCE(NULLIF($2, ''), access_token),
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			token_expires_at = COALESCE($4, token_expires_at),
			updated_at = CURRENT_TIMESTAMP
		WHERE platform = $1
	`
	result, err := r.db.ExecContext(ctx, query, platform, accessToken, refreshToken, nullTime(expiresAt))
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return ErrCredentialNotFound
	}
	return nil
}
