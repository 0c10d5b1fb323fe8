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

const instagramGraphURL = "https://graph.facebook.com/v19.0"

// instagramPublisher publishes through the two-step container flow: create
// a media container from a public image URL, then publish the container.
type instagramPublisher struct {
	cfg config.Config
}

func NewInstagramPublisher(cfg config.Config) Publisher {
	return &instagramPublisher{cfg: cfg}
}

func (ig *instagramPublisher) Publish(ctx context.Context, acc *models.SocialAccount, content *models.ContentItem) (*Result, error) {
	if content.MediaURL == "" {
		return nil, &Error{Provider: models.ProviderInstagram, Cause: "instagram requires a media attachment"}
	}

	containerID, err := ig.createContainer(ctx, acc, content)
	if err != nil {
		return nil, err
	}

	mediaID, err := ig.publishContainer(ctx, acc, containerID)
	if err != nil {
		return nil, err
	}

	permalink := ig.fetchPermalink(ctx, acc, mediaID)
	if permalink == "" {
		permalink = fmt.Sprintf("https://www.instagram.com/%s", acc.AccountUsername)
	}

	return &Result{
		ExternalID:  mediaID,
		ExternalURL: permalink,
	}, nil
}

func (ig *instagramPublisher) createContainer(ctx context.Context, acc *models.SocialAccount, content *models.ContentItem) (string, error) {
	data := url.Values{}
	data.Set("image_url", content.MediaURL)
	data.Set("caption", content.Body)
	data.Set("access_token", acc.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/media", instagramGraphURL, acc.ProviderAccountID)
	id, err := ig.graphPost(ctx, endpoint, data)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (ig *instagramPublisher) publishContainer(ctx context.Context, acc *models.SocialAccount, containerID string) (string, error) {
	data := url.Values{}
	data.Set("creation_id", containerID)
	data.Set("access_token", acc.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/media_publish", instagramGraphURL, acc.ProviderAccountID)
	id, err := ig.graphPost(ctx, endpoint, data)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (ig *instagramPublisher) graphPost(ctx context.Context, endpoint string, data url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", &Error{Provider: models.ProviderInstagram, Cause: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return "", &Error{Provider: models.ProviderInstagram, Cause: "failed to read response"}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr transfer.FacebookErrorResponse
		cause := fmt.Sprintf("request rejected with status %d", resp.StatusCode)
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
			cause = apiErr.Error.Message
		}
		slog.Info("instagram publish step failed", "status", resp.StatusCode)
		return "", &Error{Provider: models.ProviderInstagram, Cause: cause}
	}

	var result transfer.InstagramContainerResponse
	if err := json.Unmarshal(raw, &result); err != nil || result.ID == "" {
		slog.Info("instagram publish step returned no id")
		return "", &Error{Provider: models.ProviderInstagram, Cause: "request accepted but no id returned"}
	}

	return result.ID, nil
}

// fetchPermalink is best-effort; a failed lookup falls back to the profile
// URL rather than failing the publish.
func (ig *instagramPublisher) fetchPermalink(ctx context.Context, acc *models.SocialAccount, mediaID string) string {
	endpoint := fmt.Sprintf("%s/%s?fields=permalink&access_token=%s", instagramGraphURL, mediaID, url.QueryEscape(acc.AccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return ""
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var result transfer.InstagramPermalink
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return ""
	}
	return result.Permalink
}

// Refresh renews the long-lived token via the ig_refresh_token grant.
func (ig *instagramPublisher) Refresh(ctx context.Context, acc *models.SocialAccount) (*Token, error) {
	endpoint := fmt.Sprintf("https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token&access_token=%s", url.QueryEscape(acc.RefreshToken))
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
		slog.Info("instagram token refresh returned non-200 status")
		return nil, fmt.Errorf("instagram token refresh returned status %d", resp.StatusCode)
	}

	var result transfer.InstagramRefreshResponse
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
