package provider

import (
	"bytes"
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

const (
	linkedinPostsURL = "https://api.linkedin.com/v2/ugcPosts"
	linkedinTokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
)

type linkedinPublisher struct {
	cfg config.Config
}

func NewLinkedinPublisher(cfg config.Config) Publisher {
	return &linkedinPublisher{cfg: cfg}
}

func (l *linkedinPublisher) Publish(ctx context.Context, acc *models.SocialAccount, content *models.ContentItem) (*Result, error) {
	post := transfer.LinkedinPostRequest{
		Author:         fmt.Sprintf("urn:li:person:%s", acc.ProviderAccountID),
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]transfer.LinkedinShareContent{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    transfer.LinkedinShareText{Text: content.Body},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(post)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, linkedinPostsURL, bytes.NewReader(body))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+acc.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, &Error{Provider: models.ProviderLinkedin, Cause: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var apiErr transfer.LinkedinErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		cause := fmt.Sprintf("post rejected with status %d", resp.StatusCode)
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
			cause = apiErr.Message
		}
		slog.Info("linkedin publish failed", "status", resp.StatusCode)
		return nil, &Error{Provider: models.ProviderLinkedin, Cause: cause}
	}

	var result transfer.LinkedinPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, &Error{Provider: models.ProviderLinkedin, Cause: "failed to decode post response"}
	}

	externalID := result.ID
	if externalID == "" {
		externalID = resp.Header.Get("X-Restli-Id")
	}
	if externalID == "" {
		return nil, &Error{Provider: models.ProviderLinkedin, Cause: "post accepted but no id returned"}
	}

	return &Result{
		ExternalID:  externalID,
		ExternalURL: fmt.Sprintf("https://www.linkedin.com/feed/update/%s", externalID),
	}, nil
}

func (l *linkedinPublisher) Refresh(ctx context.Context, acc *models.SocialAccount) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", acc.RefreshToken)
	data.Set("client_id", l.cfg.LinkedinClientID)
	data.Set("client_secret", l.cfg.LinkedinClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, linkedinTokenURL, strings.NewReader(data.Encode()))
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
		slog.Info("linkedin token refresh returned non-200 status")
		return nil, fmt.Errorf("linkedin token refresh returned status %d", resp.StatusCode)
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		ExpiresIn    int    `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
	}
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
