package provider

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/talentwire/socialcast/internal/models"
)

// stubPublisher fabricates a publish result without any network I/O. It
// stands in for disconnected accounts and demo tenants.
type stubPublisher struct{}

func NewStubPublisher() Publisher {
	return &stubPublisher{}
}

func (s *stubPublisher) Publish(ctx context.Context, acc *models.SocialAccount, content *models.ContentItem) (*Result, error) {
	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	externalID := "stub_" + id
	return &Result{
		ExternalID:  externalID,
		ExternalURL: fmt.Sprintf("https://demo.socialcast.dev/p/%s", externalID),
		IsStub:      true,
	}, nil
}
