package transfer

import "github.com/talentwire/socialcast/internal/models"

type PublicationCreation struct {
	ContentID   int64  `json:"content_id"`
	AccountID   int64  `json:"account_id"`
	ScheduledAt string `json:"scheduled_at"`
}

type ProviderResult struct {
	ExternalID  string `json:"external_id"`
	ExternalURL string `json:"external_url"`
	IsStub      bool   `json:"is_stub"`
}

type PublishOutcome struct {
	Success     bool                `json:"success"`
	Publication *models.Publication `json:"publication"`
	Provider    *ProviderResult     `json:"provider,omitempty"`
}

type PollItemResult struct {
	PublicationID int64  `json:"publication_id"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

type PollSummary struct {
	Processed int              `json:"processed"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []PollItemResult `json:"results"`
}

type PollStatus struct {
	PendingCount int `json:"pending_count"`
	MaxAttempts  int `json:"max_attempts"`
	BatchSize    int `json:"batch_size"`
}
