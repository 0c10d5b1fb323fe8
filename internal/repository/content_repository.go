package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/talentwire/socialcast/internal/models"
)

// ContentRepository is read-only from the publisher's side; content rows
// are created and approved by the content pipeline.
type ContentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ContentItem, error)
}

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) GetByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	query := `SELECT id, tenant_id, title, body, media_url, status, created_at, updated_at FROM content_items WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var c models.ContentItem
	err := row.Scan(&c.ID, &c.TenantID, &c.Title, &c.Body, &c.MediaURL, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &c, nil
}
