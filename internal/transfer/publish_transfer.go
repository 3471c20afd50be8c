package transfer

import "github.com/maheshrc27/autopost/internal/models"

type PublishRequest struct {
	Posts []models.NormalizedPost `json:"posts"`
	// Credentials, when present, replace the stored credentials for this
	// request only.
	Credentials map[string]models.PlatformCredential `json:"credentials,omitempty"`
	ScheduledAt string                               `json:"scheduled_at,omitempty"`
}

type ScheduledPublishResponse struct {
	TaskID      string `json:"task_id"`
	ScheduledAt string `json:"scheduled_at"`
	Message     string `json:"message"`
}

type GenerateRequest struct {
	Business  BusinessInfo `json:"business"`
	Platforms []string     `json:"platforms"`
	Count     int          `json:"count"`
}

type BusinessInfo struct {
	Name           string   `json:"name"`
	Industry       string   `json:"industry"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	TargetAudience string   `json:"target_audience"`
	Website        string   `json:"website"`
	Phone          string   `json:"phone"`
	Offer          string   `json:"offer"`
	Images         []string `json:"images"`
	VideoURL       string   `json:"video_url"`
}
