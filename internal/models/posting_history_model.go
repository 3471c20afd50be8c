package models

import "time"

type PostingHistory struct {
	ID           int64     `db:"id" json:"id"`
	BatchID      string    `db:"batch_id" json:"batch_id"`
	Platform     Platform  `db:"platform" json:"platform"`
	PostType     PostType  `db:"post_type" json:"post_type"`
	Success      bool      `db:"success" json:"success"`
	Simulated    bool      `db:"simulated" json:"simulated"`
	State        string    `db:"state" json:"state"`
	PostID       string    `db:"post_id" json:"post_id"`
	Caption      string    `db:"caption" json:"caption"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type PlatformStats struct {
	Platform    Platform `json:"platform"`
	Total       int      `json:"total"`
	Successful  int      `json:"successful"`
	Failed      int      `json:"failed"`
	Simulated   int      `json:"simulated"`
	SuccessRate float64  `json:"success_rate"`
}

type EngagementStats struct {
	TotalAttempts int              `json:"total_attempts"`
	Successful    int              `json:"successful"`
	Failed        int              `json:"failed"`
	SuccessRate   float64          `json:"success_rate"`
	BestPlatform  Platform         `json:"best_platform,omitempty"`
	Platforms     []*PlatformStats `json:"platforms"`
}
