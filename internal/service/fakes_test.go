package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/talentwire/socialcast/internal/models"
)

// In-memory repository fakes shared by the service tests. They model just
// enough storage behavior for the executor's conditional transitions to be
// observable.

type fakePublicationRepo struct {
	publications map[int64]*models.Publication
	nextID       int64

	markPublishingCalls int
	markFailedCalls     int
	markScheduledCalls  int
}

func newFakePublicationRepo() *fakePublicationRepo {
	return &fakePublicationRepo{publications: map[int64]*models.Publication{}, nextID: 1}
}

func (f *fakePublicationRepo) add(p *models.Publication) *models.Publication {
	if p.ID == 0 {
		p.ID = f.nextID
		f.nextID++
	}
	f.publications[p.ID] = p
	return p
}

func (f *fakePublicationRepo) Create(ctx context.Context, tx *sql.Tx, p *models.Publication) (int64, error) {
	copied := *p
	f.add(&copied)
	return copied.ID, nil
}

func (f *fakePublicationRepo) GetByID(ctx context.Context, id int64) (*models.Publication, error) {
	p, ok := f.publications[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePublicationRepo) ListByTenant(ctx context.Context, tenantID int64) ([]*models.Publication, error) {
	var out []*models.Publication
	for _, p := range f.publications {
		if p.TenantID == tenantID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakePublicationRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Publication, error) {
	var due []*models.Publication
	for _, p := range f.publications {
		if p.Status == models.PublicationStatusScheduled && !p.ScheduledAt.After(now) && p.AttemptCount < p.MaxAttempts {
			copied := *p
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakePublicationRepo) CountDue(ctx context.Context, now time.Time) (int, error) {
	due, _ := f.ListDue(ctx, now, int(^uint(0)>>1))
	return len(due), nil
}

func (f *fakePublicationRepo) MarkPublishing(ctx context.Context, id int64) (bool, error) {
	f.markPublishingCalls++
	p, ok := f.publications[id]
	if !ok || p.Status != models.PublicationStatusScheduled || p.AttemptCount >= p.MaxAttempts {
		return false, nil
	}
	p.Status = models.PublicationStatusPublishing
	p.AttemptCount++
	return true, nil
}

func (f *fakePublicationRepo) MarkPublished(ctx context.Context, id int64, externalID, externalURL string, publishedAt time.Time) error {
	p, ok := f.publications[id]
	if !ok {
		return errors.New("missing publication")
	}
	p.Status = models.PublicationStatusPublished
	p.ExternalID = externalID
	p.ExternalURL = externalURL
	p.PublishedAt = &publishedAt
	p.ErrorMessage = ""
	return nil
}

func (f *fakePublicationRepo) MarkScheduled(ctx context.Context, id int64, errorMessage string) error {
	f.markScheduledCalls++
	p, ok := f.publications[id]
	if !ok {
		return errors.New("missing publication")
	}
	p.Status = models.PublicationStatusScheduled
	p.ErrorMessage = errorMessage
	return nil
}

func (f *fakePublicationRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	f.markFailedCalls++
	p, ok := f.publications[id]
	if !ok {
		return errors.New("missing publication")
	}
	p.Status = models.PublicationStatusFailed
	p.ErrorMessage = errorMessage
	return nil
}

type fakeSocialAccountRepo struct {
	accounts map[int64]*models.SocialAccount
	upserts  int
}

func newFakeSocialAccountRepo() *fakeSocialAccountRepo {
	return &fakeSocialAccountRepo{accounts: map[int64]*models.SocialAccount{}}
}

func (f *fakeSocialAccountRepo) Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	f.upserts++
	for _, existing := range f.accounts {
		if existing.TenantID == sa.TenantID && existing.Provider == sa.Provider && existing.ProviderAccountID == sa.ProviderAccountID {
			sa.ID = existing.ID
			copied := *sa
			f.accounts[existing.ID] = &copied
			return existing.ID, nil
		}
	}
	sa.ID = int64(len(f.accounts) + 1)
	copied := *sa
	f.accounts[sa.ID] = &copied
	return sa.ID, nil
}

func (f *fakeSocialAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	sa, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *sa
	return &copied, nil
}

func (f *fakeSocialAccountRepo) ListInfoByTenant(ctx context.Context, tenantID int64) ([]*models.SocialAccount, error) {
	var out []*models.SocialAccount
	for _, sa := range f.accounts {
		if sa.TenantID == tenantID {
			copied := *sa
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSocialAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeSocialAccountRepo) CheckByTenant(ctx context.Context, accountID, tenantID int64) (bool, error) {
	sa, ok := f.accounts[accountID]
	return ok && sa.TenantID == tenantID, nil
}

func (f *fakeSocialAccountRepo) SetTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	sa, ok := f.accounts[id]
	if !ok {
		return errors.New("missing account")
	}
	sa.AccessToken = accessToken
	sa.RefreshToken = refreshToken
	sa.TokenExpiresAt = expiresAt
	return nil
}

func (f *fakeSocialAccountRepo) SetLastError(ctx context.Context, id int64, message string) error {
	if sa, ok := f.accounts[id]; ok {
		sa.LastError = message
	}
	return nil
}

func (f *fakeSocialAccountRepo) Disconnect(ctx context.Context, id int64) error {
	sa, ok := f.accounts[id]
	if !ok {
		return errors.New("missing account")
	}
	sa.IsActive = false
	sa.AccessToken = ""
	sa.RefreshToken = ""
	return nil
}

type fakeContentRepo struct {
	items map[int64]*models.ContentItem
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{items: map[int64]*models.ContentItem{}}
}

func (f *fakeContentRepo) GetByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

type fakeTenantRepo struct {
	tenants map[int64]*models.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: map[int64]*models.Tenant{}}
}

func (f *fakeTenantRepo) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

type fakeAuditRepo struct {
	events []*models.AuditEvent
}

func (f *fakeAuditRepo) Create(ctx context.Context, event *models.AuditEvent) (int64, error) {
	f.events = append(f.events, event)
	return int64(len(f.events)), nil
}

func (f *fakeAuditRepo) ListByTenant(ctx context.Context, tenantID int64, limit int) ([]*models.AuditEvent, error) {
	return f.events, nil
}
