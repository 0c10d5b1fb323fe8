package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	config "github.com/talentwire/socialcast/configs"
	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/transfer"
)

const facebookGraphURL = "https://graph.facebook.com/v19.0"

// facebookPublisher posts to a managed Page feed. The stored access token
// is the page token resolved at connect time.
type facebookPublisher struct {
	cfg config.Config
}

func NewFacebookPublisher(cfg config.Config) Publisher {
	return &facebookPublisher{cfg: cfg}
}

func (f *facebookPublisher) Publish(ctx context.Context, acc *models.SocialAccount, content *models.ContentItem) (*Result, error) {
	data := url.Values{}
	data.Set("message", content.Body)
	data.Set("access_token", acc.AccessToken)
	if content.MediaURL != "" {
		data.Set("link", content.MediaURL)
	}

	endpoint := fmt.Sprintf("%s/%s/feed", facebookGraphURL, acc.ProviderAccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, &Error{Provider: models.ProviderFacebook, Cause: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, &Error{Provider: models.ProviderFacebook, Cause: "failed to read response"}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr transfer.FacebookErrorResponse
		cause := fmt.Sprintf("post rejected with status %d", resp.StatusCode)
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
			cause = apiErr.Error.Message
		}
		slog.Info("facebook publish failed", "status", resp.StatusCode)
		return nil, &Error{Provider: models.ProviderFacebook, Cause: cause}
	}

	var result transfer.FacebookPostResponse
	if err := json.Unmarshal(raw, &result); err != nil || result.ID == "" {
		slog.Info("facebook publish returned no post id")
		return nil, &Error{Provider: models.ProviderFacebook, Cause: "post accepted but no id returned"}
	}

	return &Result{
		ExternalID:  result.ID,
		ExternalURL: fmt.Sprintf("https://www.facebook.com/%s", result.ID),
	}, nil
}

// Refresh exchanges the current long-lived token for a fresh one. Facebook
// has no refresh-token grant; the token itself is the refresh credential.
func (f *facebookPublisher) Refresh(ctx context.Context, acc *models.SocialAccount) (*Token, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", f.cfg.FacebookClientID)
	params.Set("client_secret", f.cfg.FacebookClientSecret)
	params.Set("fb_exchange_token", acc.RefreshToken)

	endpoint := fmt.Sprintf("%s/oauth/access_token?%s", facebookGraphURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("facebook token exchange returned non-200 status")
		return nil, fmt.Errorf("facebook token exchange returned status %d", resp.StatusCode)
	}

	var result transfer.FacebookTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.AccessToken,
		ExpiresAt:    expiresAt(result.ExpiresIn),
	}, nil
}
