package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/repository"
	"github.com/talentwire/socialcast/internal/transfer"
)

// PublicationService queues approved content for release. Rows it creates
// are mutated only by the executor afterwards.
type PublicationService interface {
	Schedule(ctx context.Context, tenantID int64, pc *transfer.PublicationCreation) (*models.Publication, time.Duration, error)
	List(ctx context.Context, tenantID int64) ([]*models.Publication, error)
	Info(ctx context.Context, tenantID, publicationID int64) (*models.Publication, error)
}

type publicationService struct {
	pr repository.PublicationRepository
	cr repository.ContentRepository
	sa repository.SocialAccountRepository
}

func NewPublicationService(
	pr repository.PublicationRepository,
	cr repository.ContentRepository,
	sa repository.SocialAccountRepository) PublicationService {
	return &publicationService{
		pr: pr,
		cr: cr,
		sa: sa,
	}
}

func (s *publicationService) Schedule(ctx context.Context, tenantID int64, pc *transfer.PublicationCreation) (*models.Publication, time.Duration, error) {
	if pc == nil {
		err := errors.New("publication data is nil")
		slog.Error(err.Error())
		return nil, 0, err
	}

	scheduledAt, err := time.Parse(time.RFC3339, pc.ScheduledAt)
	if err != nil {
		// Also accept the datetime-local shape the dashboard sends.
		scheduledAt, err = time.Parse("2006-01-02T15:04", pc.ScheduledAt)
		if err != nil {
			err = fmt.Errorf("invalid scheduled time format: %w", err)
			slog.Info(err.Error())
			return nil, 0, err
		}
	}

	content, err := s.cr.GetByID(ctx, pc.ContentID)
	if err != nil {
		return nil, 0, err
	}
	if content == nil || content.TenantID != tenantID || content.Status != models.ContentStatusApproved {
		return nil, 0, ErrContentNotPublishable
	}

	owned, err := s.sa.CheckByTenant(ctx, pc.AccountID, tenantID)
	if err != nil {
		return nil, 0, err
	}
	if !owned {
		err = errors.New("social account doesn't exist")
		slog.Info(err.Error())
		return nil, 0, err
	}

	pub := &models.Publication{
		TenantID:    tenantID,
		ContentID:   pc.ContentID,
		AccountID:   pc.AccountID,
		Status:      models.PublicationStatusScheduled,
		ScheduledAt: scheduledAt,
		MaxAttempts: MaxPublishAttempts,
	}

	id, err := s.pr.Create(ctx, nil, pub)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating publication: %w", err)
	}
	pub.ID = id

	delay := time.Until(scheduledAt)
	if delay < 0 {
		delay = 0
	}

	return pub, delay, nil
}

func (s *publicationService) List(ctx context.Context, tenantID int64) ([]*models.Publication, error) {
	if tenantID == 0 {
		err := errors.New("tenant id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	return s.pr.ListByTenant(ctx, tenantID)
}

func (s *publicationService) Info(ctx context.Context, tenantID, publicationID int64) (*models.Publication, error) {
	pub, err := s.pr.GetByID(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if pub == nil || pub.TenantID != tenantID {
		return nil, ErrPublicationNotFound
	}
	return pub, nil
}
