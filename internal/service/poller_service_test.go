package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talentwire/socialcast/internal/models"
)

func newPollerFixture() (*executorFixture, PollerService) {
	f := newExecutorFixture()
	return f, NewPollerService(f.pr, f.svc)
}

func seedDueDemoPublications(f *executorFixture, n int) {
	f.seedTenant(1, true)
	f.seedContent(1, 1, models.ContentStatusApproved)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		f.seedPublication(&models.Publication{
			TenantID:    1,
			ContentID:   1,
			AccountID:   1,
			Status:      models.PublicationStatusScheduled,
			ScheduledAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestPoller_BatchCapAndDrain(t *testing.T) {
	f, poller := newPollerFixture()
	seedDueDemoPublications(f, 12)

	first, err := poller.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, PollBatchSize, first.Processed)
	require.Equal(t, PollBatchSize, first.Succeeded)
	require.Zero(t, first.Failed)

	second, err := poller.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, second.Processed)
	require.Equal(t, 2, second.Succeeded)

	third, err := poller.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, third.Processed)
}

func TestPoller_TakesOldestFirst(t *testing.T) {
	f, poller := newPollerFixture()
	f.seedTenant(1, true)
	f.seedContent(1, 1, models.ContentStatusApproved)

	newest := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   1,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Minute),
	})
	oldest := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   1,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-2 * time.Hour),
	})

	summary, err := poller.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	require.Equal(t, oldest.ID, summary.Results[0].PublicationID)
	require.Equal(t, newest.ID, summary.Results[1].PublicationID)
}

func TestPoller_FutureAndExhaustedAreSkipped(t *testing.T) {
	f, poller := newPollerFixture()
	f.seedTenant(1, true)
	f.seedContent(1, 1, models.ContentStatusApproved)

	f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   1,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(time.Hour),
	})
	f.seedPublication(&models.Publication{
		TenantID:     1,
		ContentID:    1,
		AccountID:    1,
		Status:       models.PublicationStatusScheduled,
		ScheduledAt:  time.Now().Add(-time.Hour),
		AttemptCount: 3,
		MaxAttempts:  3,
	})

	summary, err := poller.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.Processed)
}

func TestPoller_OneBadItemDoesNotSinkBatch(t *testing.T) {
	f, poller := newPollerFixture()
	f.seedTenant(1, true)
	f.seedContent(1, 1, models.ContentStatusApproved)
	f.seedContent(2, 1, models.ContentStatusDraft)

	bad := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   2,
		AccountID:   1,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-2 * time.Hour),
	})
	good := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   1,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Hour),
	})

	summary, err := poller.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Processed)
	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.NotEmpty(t, summary.Results[0].Error)

	require.Equal(t, models.PublicationStatusScheduled, f.pr.publications[bad.ID].Status)
	require.Equal(t, models.PublicationStatusPublished, f.pr.publications[good.ID].Status)
}

func TestPoller_Pending(t *testing.T) {
	f, poller := newPollerFixture()
	seedDueDemoPublications(f, 4)

	status, err := poller.Pending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, status.PendingCount)
	require.Equal(t, MaxPublishAttempts, status.MaxAttempts)
	require.Equal(t, PollBatchSize, status.BatchSize)
}

// Overlapping poll invocations must not double-publish: the second
// RunOnce observes rows the first already moved out of scheduled.
func TestPoller_RepeatedRunsPublishOnce(t *testing.T) {
	f, poller := newPollerFixture()
	seedDueDemoPublications(f, 3)

	_, err := poller.RunOnce(context.Background())
	require.NoError(t, err)
	summary, err := poller.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.Processed)

	for _, pub := range f.pr.publications {
		require.Equal(t, 1, pub.AttemptCount)
	}
}
