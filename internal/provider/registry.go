package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/talentwire/socialcast/configs"
	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/repository"
	"github.com/talentwire/socialcast/pkg/utils"
)

// Registry owns the closed provider dispatch table. Adapter selection is
// by the account's provider value; unknown values are an error, not a
// fallthrough.
type Registry struct {
	cfg        config.Config
	sa         repository.SocialAccountRepository
	publishers map[string]Publisher
	stub       Publisher
}

func NewRegistry(cfg config.Config, sa repository.SocialAccountRepository) *Registry {
	return &Registry{
		cfg: cfg,
		sa:  sa,
		publishers: map[string]Publisher{
			models.ProviderLinkedin:  NewLinkedinPublisher(cfg),
			models.ProviderFacebook:  NewFacebookPublisher(cfg),
			models.ProviderInstagram: NewInstagramPublisher(cfg),
			models.ProviderTiktok:    NewTiktokPublisher(cfg),
		},
		stub: NewStubPublisher(),
	}
}

// Stub returns the simulation adapter used for demo tenants.
func (r *Registry) Stub() Publisher {
	return r.stub
}

// Resolve picks the adapter for the account and returns a copy of the
// account with plaintext credentials. Accounts without a usable token get
// the stub; expired tokens are refreshed first when the platform supports
// it, otherwise the attempt fails before any provider call.
func (r *Registry) Resolve(ctx context.Context, acc *models.SocialAccount) (Publisher, *models.SocialAccount, error) {
	if acc == nil || acc.AccessToken == "" {
		return r.stub, acc, nil
	}

	p, ok := r.publishers[acc.Provider]
	if !ok {
		return nil, nil, fmt.Errorf("unknown provider %q", acc.Provider)
	}

	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(r.cfg.SecretKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	var refreshToken string
	if acc.RefreshToken != "" {
		refreshToken, err = utils.Decrypt(acc.RefreshToken, []byte(r.cfg.SecretKey))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
		}
	}

	plain := *acc
	plain.AccessToken = accessToken
	plain.RefreshToken = refreshToken

	if !acc.TokenExpiresAt.After(time.Now()) {
		refreshed, err := r.refresh(ctx, p, &plain)
		if err != nil {
			return nil, nil, err
		}
		plain = *refreshed
	}

	return p, &plain, nil
}

func (r *Registry) refresh(ctx context.Context, p Publisher, acc *models.SocialAccount) (*models.SocialAccount, error) {
	refresher, ok := p.(TokenRefresher)
	if !ok || acc.RefreshToken == "" {
		return nil, ErrCredentialExpired
	}

	token, err := refresher.Refresh(ctx, acc)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %s", ErrCredentialExpired, err.Error())
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(r.cfg.SecretKey))
	if err != nil {
		return nil, err
	}
	var encryptedRefresh string
	if token.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(token.RefreshToken), []byte(r.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
	}

	if err := r.sa.SetTokens(ctx, acc.ID, encryptedAccess, encryptedRefresh, token.ExpiresAt); err != nil {
		return nil, err
	}

	refreshed := *acc
	refreshed.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	refreshed.TokenExpiresAt = token.ExpiresAt
	return &refreshed, nil
}
