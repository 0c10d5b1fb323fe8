package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/provider"
	"github.com/talentwire/socialcast/internal/repository"
	"github.com/talentwire/socialcast/internal/transfer"
)

// MaxPublishAttempts bounds retries per publication. There is no backoff:
// a failed item simply becomes eligible again at the next poll tick.
const MaxPublishAttempts = 3

// PublishService performs exactly one publish attempt per call. It is the
// only component that mutates publication rows.
type PublishService interface {
	// Publish runs one attempt for the publication. A tenantID of 0 skips
	// the ownership check and is reserved for internal callers (poller,
	// queue worker).
	Publish(ctx context.Context, tenantID, publicationID int64) (*transfer.PublishOutcome, error)
}

type publishService struct {
	pr       repository.PublicationRepository
	sa       repository.SocialAccountRepository
	cr       repository.ContentRepository
	tr       repository.TenantRepository
	ar       repository.AuditRepository
	registry *provider.Registry
}

func NewPublishService(
	pr repository.PublicationRepository,
	sa repository.SocialAccountRepository,
	cr repository.ContentRepository,
	tr repository.TenantRepository,
	ar repository.AuditRepository,
	registry *provider.Registry) PublishService {
	return &publishService{
		pr:       pr,
		sa:       sa,
		cr:       cr,
		tr:       tr,
		ar:       ar,
		registry: registry,
	}
}

func (s *publishService) Publish(ctx context.Context, tenantID, publicationID int64) (*transfer.PublishOutcome, error) {
	pub, err := s.pr.GetByID(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if pub == nil || (tenantID != 0 && pub.TenantID != tenantID) {
		return nil, ErrPublicationNotFound
	}

	switch pub.Status {
	case models.PublicationStatusPublished:
		// Idempotent replay: report success without touching the provider.
		return &transfer.PublishOutcome{
			Success:     true,
			Publication: pub,
			Provider: &transfer.ProviderResult{
				ExternalID:  pub.ExternalID,
				ExternalURL: pub.ExternalURL,
				IsStub:      strings.HasPrefix(pub.ExternalID, "stub_"),
			},
		}, nil

	case models.PublicationStatusPublishing:
		return nil, ErrPublishingInProgress
	}

	if pub.AttemptCount >= pub.MaxAttempts {
		if pub.Status != models.PublicationStatusFailed {
			if err := s.pr.MarkFailed(ctx, pub.ID, pub.ErrorMessage); err != nil {
				slog.Info(err.Error())
			}
		}
		return nil, ErrMaxAttemptsReached
	}

	// The claim is a single conditional write; when two triggers race for
	// the same row, exactly one passes and the other lands here.
	claimed, err := s.pr.MarkPublishing(ctx, pub.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrPublishingInProgress
	}
	pub.Status = models.PublicationStatusPublishing
	pub.AttemptCount++

	tenant, err := s.tr.GetByID(ctx, pub.TenantID)
	if err != nil {
		return s.settle(ctx, pub, err.Error(), err)
	}
	demo := tenant != nil && tenant.DemoMode

	content, err := s.cr.GetByID(ctx, pub.ContentID)
	if err != nil {
		return s.settle(ctx, pub, err.Error(), err)
	}
	if content == nil || content.TenantID != pub.TenantID || content.Status != models.ContentStatusApproved {
		return s.settle(ctx, pub, ErrContentNotPublishable.Error(), ErrContentNotPublishable)
	}

	var publisher provider.Publisher
	var account *models.SocialAccount

	if demo {
		// Demo tenants always simulate, whether or not a real account is
		// connected, and never spend real provider error budget.
		publisher = s.registry.Stub()
		account, _ = s.sa.GetByID(ctx, pub.AccountID)
	} else {
		account, err = s.sa.GetByID(ctx, pub.AccountID)
		if err != nil {
			return s.settle(ctx, pub, err.Error(), err)
		}
		if account == nil || !account.IsActive || account.TenantID != pub.TenantID {
			return s.settle(ctx, pub, ErrNoProvider.Error(), ErrNoProvider)
		}

		publisher, account, err = s.registry.Resolve(ctx, account)
		if err != nil {
			if errors.Is(err, provider.ErrCredentialExpired) {
				if account != nil {
					_ = s.sa.SetLastError(ctx, pub.AccountID, err.Error())
				}
				return s.settle(ctx, pub, err.Error(), fmt.Errorf("%w: %s", ErrNoProvider, err.Error()))
			}
			return s.settle(ctx, pub, err.Error(), err)
		}
	}

	result, err := publisher.Publish(ctx, account, content)
	if err != nil {
		return s.settle(ctx, pub, err.Error(), err)
	}

	publishedAt := time.Now()
	if err := s.pr.MarkPublished(ctx, pub.ID, result.ExternalID, result.ExternalURL, publishedAt); err != nil {
		return nil, err
	}

	pub.Status = models.PublicationStatusPublished
	pub.PublishedAt = &publishedAt
	pub.ExternalID = result.ExternalID
	pub.ExternalURL = result.ExternalURL
	pub.ErrorMessage = ""

	if _, err := s.ar.Create(ctx, &models.AuditEvent{
		TenantID:  pub.TenantID,
		EventType: models.AuditPublicationPublished,
		SubjectID: pub.ID,
		Detail:    result.ExternalURL,
	}); err != nil {
		slog.Info(err.Error())
	}

	return &transfer.PublishOutcome{
		Success:     true,
		Publication: pub,
		Provider: &transfer.ProviderResult{
			ExternalID:  result.ExternalID,
			ExternalURL: result.ExternalURL,
			IsStub:      result.IsStub,
		},
	}, nil
}

// settle records a failed attempt: back to scheduled while attempts
// remain, terminally failed otherwise. The original cause is returned so
// callers can map it.
func (s *publishService) settle(ctx context.Context, pub *models.Publication, message string, cause error) (*transfer.PublishOutcome, error) {
	pub.ErrorMessage = message

	if pub.AttemptCount >= pub.MaxAttempts {
		pub.Status = models.PublicationStatusFailed
		if err := s.pr.MarkFailed(ctx, pub.ID, message); err != nil {
			slog.Info(err.Error())
		}
	} else {
		pub.Status = models.PublicationStatusScheduled
		if err := s.pr.MarkScheduled(ctx, pub.ID, message); err != nil {
			slog.Info(err.Error())
		}
	}

	if _, err := s.ar.Create(ctx, &models.AuditEvent{
		TenantID:  pub.TenantID,
		EventType: models.AuditPublicationFailed,
		SubjectID: pub.ID,
		Detail:    message,
	}); err != nil {
		slog.Info(err.Error())
	}

	return &transfer.PublishOutcome{
		Success:     false,
		Publication: pub,
	}, cause
}
