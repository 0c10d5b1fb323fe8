package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/talentwire/socialcast/internal/repository"
	"github.com/talentwire/socialcast/internal/transfer"
)

// PollBatchSize caps how many due publications one poll invocation
// processes.
const PollBatchSize = 10

// PollerService drives the executor over due publications. It is invoked
// by an external timer and is safe under overlapping ticks: all mutual
// exclusion lives in the executor's conditional claim.
type PollerService interface {
	RunOnce(ctx context.Context) (*transfer.PollSummary, error)
	Pending(ctx context.Context) (*transfer.PollStatus, error)
}

type pollerService struct {
	pr       repository.PublicationRepository
	executor PublishService
}

func NewPollerService(pr repository.PublicationRepository, executor PublishService) PollerService {
	return &pollerService{pr: pr, executor: executor}
}

func (s *pollerService) RunOnce(ctx context.Context) (*transfer.PollSummary, error) {
	due, err := s.pr.ListDue(ctx, time.Now(), PollBatchSize)
	if err != nil {
		return nil, err
	}

	summary := &transfer.PollSummary{
		Results: make([]transfer.PollItemResult, 0, len(due)),
	}

	for _, pub := range due {
		item := transfer.PollItemResult{PublicationID: pub.ID}

		outcome, err := s.executor.Publish(ctx, 0, pub.ID)
		if err != nil {
			// One bad item must not sink the batch.
			item.Error = err.Error()
			summary.Failed++
			slog.Info("publish attempt failed", "publication_id", pub.ID, "error", err.Error())
		} else if outcome != nil && outcome.Success {
			item.Success = true
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		summary.Processed++
		summary.Results = append(summary.Results, item)
	}

	return summary, nil
}

func (s *pollerService) Pending(ctx context.Context) (*transfer.PollStatus, error) {
	count, err := s.pr.CountDue(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	return &transfer.PollStatus{
		PendingCount: count,
		MaxAttempts:  MaxPublishAttempts,
		BatchSize:    PollBatchSize,
	}, nil
}
