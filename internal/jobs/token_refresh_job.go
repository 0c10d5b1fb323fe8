package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/provider"
	"github.com/talentwire/socialcast/internal/repository"
)

// TokenRefreshJob proactively renews provider tokens that are about to
// expire so scheduled publishes don't burn attempts on stale credentials.
type TokenRefreshJob struct {
	sr       repository.SocialAccountRepository
	registry *provider.Registry
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, registry *provider.Registry) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr:       sr,
		registry: registry,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sr.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			// Resolve refreshes and persists when the token is expired or
			// expiring; forcing expiry here covers the about-to-expire window.
			stale := *acc
			stale.TokenExpiresAt = time.Now().Add(-time.Second)
			if _, _, err := c.registry.Resolve(ctx, &stale); err != nil {
				slog.Info("unable to refresh tokens", "provider", acc.Provider, "account_id", acc.ID)
			}
		}(acc)
	}

	wg.Wait()
}
