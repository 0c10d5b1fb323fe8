package models

import "time"

type Publication struct {
	ID           int64      `db:"id" json:"id"`
	TenantID     int64      `db:"tenant_id" json:"tenant_id"`
	ContentID    int64      `db:"content_id" json:"content_id"`
	AccountID    int64      `db:"account_id" json:"account_id"`
	Status       string     `db:"status" json:"status"` // scheduled, publishing, published, failed
	ScheduledAt  time.Time  `db:"scheduled_at" json:"scheduled_at"`
	AttemptCount int        `db:"attempt_count" json:"attempt_count"`
	MaxAttempts  int        `db:"max_attempts" json:"max_attempts"`
	PublishedAt  *time.Time `db:"published_at" json:"published_at,omitempty"`
	ExternalID   string     `db:"external_id" json:"external_id,omitempty"`
	ExternalURL  string     `db:"external_url" json:"external_url,omitempty"`
	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	PublicationStatusScheduled  = "scheduled"
	PublicationStatusPublishing = "publishing"
	PublicationStatusPublished  = "published"
	PublicationStatusFailed     = "failed"
)
