package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	config "github.com/talentwire/socialcast/configs"
	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/transfer"
)

const (
	tiktokPublishURL = "https://open.tiktokapis.com/v2/post/publish/video/init/"
	tiktokTokenURL   = "https://open.tiktokapis.com/v2/oauth/token/"
)

type tiktokPublisher struct {
	cfg config.Config
}

func NewTiktokPublisher(cfg config.Config) Publisher {
	return &tiktokPublisher{cfg: cfg}
}

func (t *tiktokPublisher) Publish(ctx context.Context, acc *models.SocialAccount, content *models.ContentItem) (*Result, error) {
	if content.MediaURL == "" {
		return nil, &Error{Provider: models.ProviderTiktok, Cause: "tiktok requires a video attachment"}
	}

	title := content.Title
	if title == "" {
		title = content.Body
	}

	payload := transfer.TiktokPublishRequest{
		PostInfo: transfer.TiktokPostInfo{
			Title:        title,
			PrivacyLevel: "PUBLIC_TO_EVERYONE",
		},
		SourceInfo: transfer.TiktokSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: content.MediaURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokPublishURL, bytes.NewReader(body))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+acc.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, &Error{Provider: models.ProviderTiktok, Cause: err.Error()}
	}
	defer resp.Body.Close()

	var result transfer.TiktokPublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, &Error{Provider: models.ProviderTiktok, Cause: "failed to decode publish response"}
	}

	if resp.StatusCode != http.StatusOK || result.Data.PublishID == "" {
		cause := result.Error.Message
		if cause == "" {
			cause = fmt.Sprintf("publish rejected with status %d", resp.StatusCode)
		}
		slog.Info("tiktok publish failed", "status", resp.StatusCode, "code", result.Error.Code)
		return nil, &Error{Provider: models.ProviderTiktok, Cause: cause}
	}

	return &Result{
		ExternalID:  result.Data.PublishID,
		ExternalURL: fmt.Sprintf("https://www.tiktok.com/@%s", acc.AccountUsername),
	}, nil
}

func (t *tiktokPublisher) Refresh(ctx context.Context, acc *models.SocialAccount) (*Token, error) {
	data := url.Values{}
	data.Set("client_key", t.cfg.TiktokClientKey)
	data.Set("client_secret", t.cfg.TiktokClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", acc.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("tiktok token refresh returned non-200 status")
		return nil, fmt.Errorf("tiktok token refresh returned status %d", resp.StatusCode)
	}

	var result transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    expiresAt(result.ExpiresIn),
	}, nil
}
