package models

import "time"

type PlatformCredential struct {
	Platform          Platform  `db:"platform" json:"platform"`
	Enabled           bool      `db:"enabled" json:"enabled"`
	PageID            string    `db:"page_id" json:"page_id,omitempty"`
	BusinessAccountID string    `db:"business_account_id" json:"business_account_id,omitempty"`
	ChannelID         string    `db:"channel_id" json:"channel_id,omitempty"`
	OrganizationID    string    `db:"organization_id" json:"organization_id,omitempty"`
	OpenID            string    `db:"open_id" json:"open_id,omitempty"`
	AccessToken       string    `db:"access_token" json:"access_token,omitempty"`
	RefreshToken      string    `db:"refresh_token" json:"refresh_token,omitempty"`
	APIKey            string    `db:"api_key" json:"api_key,omitempty"`
	AppSecret         string    `db:"app_secret" json:"app_secret,omitempty"`
	TokenExpiresAt    time.Time `db:"token_expires_at" json:"token_expires_at,omitempty"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Credential field names as used in RequiredFields and API payloads.
const (
	FieldPageID            = "page_id"
	FieldBusinessAccountID = "business_account_id"
	FieldChannelID         = "channel_id"
	FieldOrganizationID    = "organization_id"
	FieldAccessToken       = "access_token"
	FieldAppSecret         = "app_secret"
)

var requiredFields = map[Platform][]string{
	PlatformFacebook:  {FieldPageID, FieldAccessToken, FieldAppSecret},
	PlatformInstagram: {FieldBusinessAccountID, FieldAccessToken},
	PlatformLinkedIn:  {FieldOrganizationID, FieldAccessToken},
	PlatformTikTok:    {FieldAccessToken},
	PlatformYouTube:   {FieldChannelID},
}

// RequiredFields lists the credential fields a platform's publish protocol
// cannot run without.
func RequiredFields(p Platform) []string {
	return requiredFields[p]
}

func (c PlatformCredential) field(name string) string {
	switch name {
	case FieldPageID:
		return c.PageID
	case FieldBusinessAccountID:
		return c.BusinessAccountID
	case FieldChannelID:
		return c.ChannelID
	case FieldOrganizationID:
		return c.OrganizationID
	case FieldAccessToken:
		return c.AccessToken
	case FieldAppSecret:
		return c.AppSecret
	}
	return ""
}

func (c PlatformCredential) MissingFields() []string {
	var missing []string
	for _, name := range RequiredFields(c.Platform) {
		if c.field(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Ready reports whether the orchestrator may dispatch to this platform.
func (c PlatformCredential) Ready() bool {
	return c.Enabled && len(c.MissingFields()) == 0
}

// Masked returns a copy safe to hand back to API clients.
func (c PlatformCredential) Masked() PlatformCredential {
	c.AccessToken = mask(c.AccessToken)
	c.RefreshToken = mask(c.RefreshToken)
	c.APIKey = mask(c.APIKey)
	c.AppSecret = mask(c.AppSecret)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
