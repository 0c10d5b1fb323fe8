package models

import "time"

type AuditEvent struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenant_id"`
	EventType string    `db:"event_type" json:"event_type"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	Detail    string    `db:"detail" json:"detail"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	AuditAccountConnected     = "account_connected"
	AuditAccountDisconnected  = "account_disconnected"
	AuditPublicationPublished = "publication_published"
	AuditPublicationFailed    = "publication_failed"
)
