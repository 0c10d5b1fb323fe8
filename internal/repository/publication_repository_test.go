package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/talentwire/socialcast/internal/models"
)

func publicationRows(t *testing.T, pubs ...*models.Publication) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "content_id", "account_id", "status", "scheduled_at",
		"attempt_count", "max_attempts", "published_at", "external_id",
		"external_url", "error_message", "created_at", "updated_at",
	})
	for _, p := range pubs {
		rows.AddRow(p.ID, p.TenantID, p.ContentID, p.AccountID, p.Status, p.ScheduledAt,
			p.AttemptCount, p.MaxAttempts, p.PublishedAt, p.ExternalID,
			p.ExternalURL, p.ErrorMessage, p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

func TestPublicationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicationRepository(db)
	scheduledAt := time.Now().Add(time.Hour)

	mock.ExpectQuery("INSERT INTO publications").
		WithArgs(int64(1), int64(2), int64(3), models.PublicationStatusScheduled, scheduledAt, 0, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Create(context.Background(), nil, &models.Publication{
		TenantID:    1,
		ContentID:   2,
		AccountID:   3,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: scheduledAt,
		MaxAttempts: 3,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_GetByID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicationRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM publications WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(publicationRows(t))

	pub, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, pub)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_MarkPublishing_Claimed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicationRepository(db)

	mock.ExpectExec("UPDATE publications").
		WithArgs(models.PublicationStatusPublishing, int64(7), models.PublicationStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.MarkPublishing(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_MarkPublishing_LostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicationRepository(db)

	// Another trigger already moved the row out of scheduled, so the
	// conditional UPDATE touches nothing.
	mock.ExpectExec("UPDATE publications").
		WithArgs(models.PublicationStatusPublishing, int64(7), models.PublicationStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.MarkPublishing(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_ListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicationRepository(db)
	now := time.Now()

	due := &models.Publication{
		ID:          3,
		TenantID:    1,
		ContentID:   2,
		AccountID:   4,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: now.Add(-time.Minute),
		MaxAttempts: 3,
	}

	mock.ExpectQuery("SELECT (.+) FROM publications\\s+WHERE status = (.+) AND scheduled_at <= (.+) AND attempt_count < max_attempts").
		WithArgs(models.PublicationStatusScheduled, now, 10).
		WillReturnRows(publicationRows(t, due))

	pubs, err := repo.ListDue(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	require.Equal(t, int64(3), pubs[0].ID)
	require.Nil(t, pubs[0].PublishedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_MarkPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicationRepository(db)
	publishedAt := time.Now()

	mock.ExpectExec("UPDATE publications").
		WithArgs(models.PublicationStatusPublished, publishedAt, "ext_9", "https://example.com/ext_9", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkPublished(context.Background(), 7, "ext_9", "https://example.com/ext_9", publishedAt)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicationRepository(db)

	mock.ExpectExec("UPDATE publications").
		WithArgs(models.PublicationStatusFailed, "provider unavailable", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkFailed(context.Background(), 7, "provider unavailable")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_CountDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPublicationRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM publications").
		WithArgs(models.PublicationStatusScheduled, now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountDue(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
