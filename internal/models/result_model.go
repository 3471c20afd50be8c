package models

import (
	"encoding/json"
	"fmt"
)

type PublishState string

const (
	StatePending          PublishState = "pending"
	StateContainerCreated PublishState = "container_created"
	StatePublished        PublishState = "published"
	StateAwaitingAuth     PublishState = "awaiting_auth"
	StateMetadataPrepared PublishState = "metadata_prepared"
	StateManualRequired   PublishState = "manual_required"
	StateFailed           PublishState = "failed"
)

type PublishResult struct {
	Success      bool            `json:"success"`
	Platform     Platform        `json:"platform"`
	PostID       string          `json:"post_id,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
	Simulated    bool            `json:"simulated,omitempty"`
	State        PublishState    `json:"state"`
	Instructions []string        `json:"instructions,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// Failed builds a failure result in the given state.
func Failed(platform Platform, state PublishState, errMsg string) PublishResult {
	return PublishResult{
		Success:  false,
		Platform: platform,
		State:    state,
		Error:    errMsg,
	}
}

type SummaryCounts struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type PublishSummary struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Results []PublishResult `json:"results"`
	Summary SummaryCounts   `json:"summary"`
}

// NewPublishSummary aggregates results. A single success makes the whole
// summary successful.
func NewPublishSummary(results []PublishResult) *PublishSummary {
	if results == nil {
		results = []PublishResult{}
	}

	counts := SummaryCounts{Total: len(results)}
	for _, r := range results {
		if r.Success {
			counts.Successful++
		}
	}
	counts.Failed = counts.Total - counts.Successful

	return &PublishSummary{
		Success: counts.Successful > 0,
		Message: fmt.Sprintf("%d/%d platforms successful", counts.Successful, counts.Total),
		Results: results,
		Summary: counts,
	}
}
