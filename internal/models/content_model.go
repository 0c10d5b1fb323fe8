package models

import "time"

// ContentItem rows are owned by the content pipeline; the publisher only
// ever reads them.
type ContentItem struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenant_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	MediaURL  string    `db:"media_url" json:"media_url,omitempty"`
	Status    string    `db:"status" json:"status"` // draft, approved, archived
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ContentStatusDraft    = "draft"
	ContentStatusApproved = "approved"
	ContentStatusArchived = "archived"
)
