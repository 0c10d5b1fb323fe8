package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/talentwire/socialcast/internal/models"
)

type AuditRepository interface {
	Create(ctx context.Context, event *models.AuditEvent) (int64, error)
	ListByTenant(ctx context.Context, tenantID int64, limit int) ([]*models.AuditEvent, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, event *models.AuditEvent) (int64, error) {
	query := `
		INSERT INTO audit_events (tenant_id, event_type, subject_id, detail)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, event.TenantID, event.EventType, event.SubjectID, event.Detail).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *auditRepository) ListByTenant(ctx context.Context, tenantID int64, limit int) ([]*models.AuditEvent, error) {
	query := `SELECT id, tenant_id, event_type, subject_id, detail, created_at FROM audit_events WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var events []*models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		err := rows.Scan(&e.ID, &e.TenantID, &e.EventType, &e.SubjectID, &e.Detail, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
