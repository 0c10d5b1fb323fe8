package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	config "github.com/talentwire/socialcast/configs"
	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/provider"
)

var testCfg = config.Config{SecretKey: "0123456789abcdef0123456789abcdef"}

type executorFixture struct {
	pr  *fakePublicationRepo
	sa  *fakeSocialAccountRepo
	cr  *fakeContentRepo
	tr  *fakeTenantRepo
	ar  *fakeAuditRepo
	svc PublishService
}

func newExecutorFixture() *executorFixture {
	pr := newFakePublicationRepo()
	sa := newFakeSocialAccountRepo()
	cr := newFakeContentRepo()
	tr := newFakeTenantRepo()
	ar := &fakeAuditRepo{}
	registry := provider.NewRegistry(testCfg, sa)

	return &executorFixture{
		pr:  pr,
		sa:  sa,
		cr:  cr,
		tr:  tr,
		ar:  ar,
		svc: NewPublishService(pr, sa, cr, tr, ar, registry),
	}
}

func (f *executorFixture) seedTenant(id int64, demo bool) {
	f.tr.tenants[id] = &models.Tenant{ID: id, Name: "Acme Staffing", DemoMode: demo}
}

func (f *executorFixture) seedContent(id, tenantID int64, status string) {
	f.cr.items[id] = &models.ContentItem{
		ID:       id,
		TenantID: tenantID,
		Title:    "Senior Go Engineer",
		Body:     "We are hiring!",
		Status:   status,
	}
}

func (f *executorFixture) seedPublication(p *models.Publication) *models.Publication {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = MaxPublishAttempts
	}
	return f.pr.add(p)
}

func TestPublish_NotFound(t *testing.T) {
	f := newExecutorFixture()

	_, err := f.svc.Publish(context.Background(), 1, 42)
	require.ErrorIs(t, err, ErrPublicationNotFound)
}

func TestPublish_ForeignTenantLooksLikeNotFound(t *testing.T) {
	f := newExecutorFixture()
	pub := f.seedPublication(&models.Publication{
		TenantID:    7,
		ContentID:   1,
		AccountID:   1,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now(),
	})

	_, err := f.svc.Publish(context.Background(), 8, pub.ID)
	require.ErrorIs(t, err, ErrPublicationNotFound)
}

func TestPublish_IdempotentReplay(t *testing.T) {
	f := newExecutorFixture()
	publishedAt := time.Now().Add(-time.Hour)
	pub := f.seedPublication(&models.Publication{
		TenantID:     1,
		ContentID:    1,
		AccountID:    1,
		Status:       models.PublicationStatusPublished,
		ScheduledAt:  publishedAt,
		AttemptCount: 1,
		PublishedAt:  &publishedAt,
		ExternalID:   "ext_1",
		ExternalURL:  "https://example.com/ext_1",
	})

	for i := 0; i < 2; i++ {
		outcome, err := f.svc.Publish(context.Background(), 1, pub.ID)
		require.NoError(t, err)
		require.True(t, outcome.Success)
		require.Equal(t, "ext_1", outcome.Provider.ExternalID)
	}

	// A replay never re-enters the claim path.
	require.Zero(t, f.pr.markPublishingCalls)
	require.Equal(t, 1, f.pr.publications[pub.ID].AttemptCount)
}

func TestPublish_InFlightGuard(t *testing.T) {
	f := newExecutorFixture()
	pub := f.seedPublication(&models.Publication{
		TenantID:     1,
		ContentID:    1,
		AccountID:    1,
		Status:       models.PublicationStatusPublishing,
		ScheduledAt:  time.Now(),
		AttemptCount: 1,
	})

	_, err := f.svc.Publish(context.Background(), 1, pub.ID)
	require.ErrorIs(t, err, ErrPublishingInProgress)
}

func TestPublish_ClaimRaceLoserGetsConflict(t *testing.T) {
	f := newExecutorFixture()
	f.seedTenant(1, true)
	f.seedContent(1, 1, models.ContentStatusApproved)
	pub := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   1,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Minute),
	})

	// Simulate the losing side of the race: the row was claimed between
	// the read and the conditional write.
	f.pr.publications[pub.ID].Status = models.PublicationStatusPublishing
	ok, err := f.pr.MarkPublishing(context.Background(), pub.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.svc.Publish(context.Background(), 1, pub.ID)
	require.ErrorIs(t, err, ErrPublishingInProgress)
}

func TestPublish_MaxAttemptsReached(t *testing.T) {
	f := newExecutorFixture()
	pub := f.seedPublication(&models.Publication{
		TenantID:     1,
		ContentID:    1,
		AccountID:    1,
		Status:       models.PublicationStatusScheduled,
		ScheduledAt:  time.Now().Add(-time.Minute),
		AttemptCount: 3,
		MaxAttempts:  3,
		ErrorMessage: "provider unavailable",
	})

	_, err := f.svc.Publish(context.Background(), 1, pub.ID)
	require.ErrorIs(t, err, ErrMaxAttemptsReached)
	require.Equal(t, models.PublicationStatusFailed, f.pr.publications[pub.ID].Status)
	require.Equal(t, 3, f.pr.publications[pub.ID].AttemptCount)
}

func TestPublish_AttemptBoundary(t *testing.T) {
	// attemptCount 2 of 3: the failing attempt becomes the last one and
	// the publication lands terminally failed, excluded from polling.
	f := newExecutorFixture()
	f.seedTenant(1, false)
	f.seedContent(1, 1, models.ContentStatusApproved)
	pub := f.seedPublication(&models.Publication{
		TenantID:     1,
		ContentID:    1,
		AccountID:    99, // no such account
		Status:       models.PublicationStatusScheduled,
		ScheduledAt:  time.Now().Add(-time.Minute),
		AttemptCount: 2,
		MaxAttempts:  3,
	})

	_, err := f.svc.Publish(context.Background(), 1, pub.ID)
	require.ErrorIs(t, err, ErrNoProvider)

	stored := f.pr.publications[pub.ID]
	require.Equal(t, 3, stored.AttemptCount)
	require.Equal(t, models.PublicationStatusFailed, stored.Status)

	due, err := f.pr.ListDue(context.Background(), time.Now(), PollBatchSize)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestPublish_NoProviderRetriesWhileAttemptsRemain(t *testing.T) {
	f := newExecutorFixture()
	f.seedTenant(1, false)
	f.seedContent(1, 1, models.ContentStatusApproved)
	pub := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   99,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Minute),
	})

	_, err := f.svc.Publish(context.Background(), 1, pub.ID)
	require.ErrorIs(t, err, ErrNoProvider)

	stored := f.pr.publications[pub.ID]
	require.Equal(t, models.PublicationStatusScheduled, stored.Status)
	require.Equal(t, 1, stored.AttemptCount)
	require.NotEmpty(t, stored.ErrorMessage)
}

func TestPublish_UnapprovedContentIsHardFailure(t *testing.T) {
	f := newExecutorFixture()
	f.seedTenant(1, false)
	f.seedContent(1, 1, models.ContentStatusDraft)
	pub := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   1,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Minute),
	})

	_, err := f.svc.Publish(context.Background(), 1, pub.ID)
	require.ErrorIs(t, err, ErrContentNotPublishable)
	require.Equal(t, 1, f.pr.publications[pub.ID].AttemptCount)
}

func TestPublish_DemoTenantAlwaysSimulates(t *testing.T) {
	f := newExecutorFixture()
	f.seedTenant(1, true)
	f.seedContent(1, 1, models.ContentStatusApproved)
	// No social account connected at all.
	pub := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   42,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Minute),
	})

	outcome, err := f.svc.Publish(context.Background(), 1, pub.ID)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.True(t, outcome.Provider.IsStub)
	require.True(t, strings.HasPrefix(outcome.Provider.ExternalID, "stub_"))

	stored := f.pr.publications[pub.ID]
	require.Equal(t, models.PublicationStatusPublished, stored.Status)
	require.NotNil(t, stored.PublishedAt)
	require.NotEmpty(t, stored.ExternalURL)
}

func TestPublish_DisconnectedAccountGetsStub(t *testing.T) {
	f := newExecutorFixture()
	f.seedTenant(1, false)
	f.seedContent(1, 1, models.ContentStatusApproved)
	f.sa.accounts[5] = &models.SocialAccount{
		ID:       5,
		TenantID: 1,
		Provider: models.ProviderLinkedin,
		IsActive: true,
		// Token cleared: sandbox account.
		AccessToken: "",
	}
	pub := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   5,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Minute),
	})

	outcome, err := f.svc.Publish(context.Background(), 1, pub.ID)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.True(t, outcome.Provider.IsStub)
}

func TestPublish_AttemptInvariantNeverExceedsMax(t *testing.T) {
	f := newExecutorFixture()
	f.seedTenant(1, false)
	f.seedContent(1, 1, models.ContentStatusApproved)
	pub := f.seedPublication(&models.Publication{
		TenantID:    1,
		ContentID:   1,
		AccountID:   99,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: time.Now().Add(-time.Minute),
		MaxAttempts: 3,
	})

	for i := 0; i < 6; i++ {
		_, _ = f.svc.Publish(context.Background(), 1, pub.ID)
		stored := f.pr.publications[pub.ID]
		require.LessOrEqual(t, stored.AttemptCount, stored.MaxAttempts)
	}

	require.Equal(t, models.PublicationStatusFailed, f.pr.publications[pub.ID].Status)
}
