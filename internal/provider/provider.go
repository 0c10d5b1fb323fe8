package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/talentwire/socialcast/internal/models"
)

// Result is what a successful publish attempt hands back to the executor.
type Result struct {
	ExternalID  string
	ExternalURL string
	IsStub      bool
}

// Error carries a human-readable cause for an upstream rejection. It is
// recorded on the publication and decides retry eligibility upstream.
type Error struct {
	Provider string
	Cause    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Cause)
}

// ErrCredentialExpired means the stored token is stale and could not be
// refreshed; the provider was never called.
var ErrCredentialExpired = errors.New("provider credentials expired")

// Publisher posts one content item to one connected account. Accounts
// passed in carry plaintext tokens; decryption happens in the registry.
type Publisher interface {
	Publish(ctx context.Context, acc *models.SocialAccount, content *models.ContentItem) (*Result, error)
}

// TokenRefresher is implemented by adapters whose platform supports
// refresh-token grants.
type TokenRefresher interface {
	Refresh(ctx context.Context, acc *models.SocialAccount) (*Token, error)
}

// Token is a freshly issued plaintext credential pair.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Provider calls are blocking I/O; the timeout keeps one hung platform
// from stalling a whole poll batch.
var httpClient = &http.Client{Timeout: 15 * time.Second}

func expiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
