package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/talentwire/socialcast/internal/models"
)

type PublicationRepository interface {
	Create(ctx context.Context, tx *sql.Tx, p *models.Publication) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Publication, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]*models.Publication, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Publication, error)
	CountDue(ctx context.Context, now time.Time) (int, error)
	MarkPublishing(ctx context.Context, id int64) (bool, error)
	MarkPublished(ctx context.Context, id int64, externalID, externalURL string, publishedAt time.Time) error
	MarkScheduled(ctx context.Context, id int64, errorMessage string) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
}

type publicationRepository struct {
	db *sql.DB
}

func NewPublicationRepository(db *sql.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

const publicationColumns = `id, tenant_id, content_id, account_id, status, scheduled_at, attempt_count, max_attempts, published_at, external_id, external_url, error_message, created_at, updated_at`

func scanPublication(row interface{ Scan(...any) error }) (*models.Publication, error) {
	var p models.Publication
	err := row.Scan(&p.ID, &p.TenantID, &p.ContentID, &p.AccountID, &p.Status,
		&p.ScheduledAt, &p.AttemptCount, &p.MaxAttempts, &p.PublishedAt,
		&p.ExternalID, &p.ExternalURL, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *publicationRepository) Create(ctx context.Context, tx *sql.Tx, p *models.Publication) (int64, error) {
	query := `
		INSERT INTO publications (tenant_id, content_id, account_id, status, scheduled_at, attempt_count, max_attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, p.TenantID, p.ContentID, p.AccountID, p.Status, p.ScheduledAt, p.AttemptCount, p.MaxAttempts).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, p.TenantID, p.ContentID, p.AccountID, p.Status, p.ScheduledAt, p.AttemptCount, p.MaxAttempts).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publicationRepository) GetByID(ctx context.Context, id int64) (*models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	p, err := scanPublication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return p, nil
}

func (r *publicationRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE tenant_id = $1 ORDER BY scheduled_at DESC`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var publications []*models.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		publications = append(publications, p)
	}
	return publications, rows.Err()
}

func (r *publicationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Publication, error) {
	query := `SELECT ` + publicationColumns + `
		FROM publications
		WHERE status = $1 AND scheduled_at <= $2 AND attempt_count < max_attempts
		ORDER BY scheduled_at ASC
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, models.PublicationStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var publications []*models.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		publications = append(publications, p)
	}
	return publications, rows.Err()
}

func (r *publicationRepository) CountDue(ctx context.Context, now time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM publications WHERE status = $1 AND scheduled_at <= $2 AND attempt_count < max_attempts`

	var count int
	err := r.db.QueryRowContext(ctx, query, models.PublicationStatusScheduled, now).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

// MarkPublishing claims the publication for a single attempt. The status
// check and the increment happen in one conditional UPDATE so two
// concurrent callers can never both claim the same row; the losing caller
// sees false.
func (r *publicationRepository) MarkPublishing(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE publications
		SET status = $1,
			attempt_count = attempt_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = $3 AND attempt_count < max_attempts
	`
	result, err := r.db.ExecContext(ctx, query, models.PublicationStatusPublishing, id, models.PublicationStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return affected == 1, nil
}

func (r *publicationRepository) MarkPublished(ctx context.Context, id int64, externalID, externalURL string, publishedAt time.Time) error {
	query := `
		UPDATE publications
		SET status = $1,
			published_at = $2,
			external_id = $3,
			external_url = $4,
			error_message = '',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PublicationStatusPublished, publishedAt, externalID, externalURL, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *publicationRepository) MarkScheduled(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE publications
		SET status = $1,
			error_message = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PublicationStatusScheduled, errorMessage, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *publicationRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE publications
		SET status = $1,
			error_message = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PublicationStatusFailed, errorMessage, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
