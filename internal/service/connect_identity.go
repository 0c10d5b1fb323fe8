package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/transfer"
)

const (
	linkedinUserInfoURL = "https://api.linkedin.com/v2/userinfo"
	facebookGraphURL    = "https://graph.facebook.com/v19.0"
	tiktokTokenURL      = "https://open.tiktokapis.com/v2/oauth/token/"
	tiktokUserInfoURL   = "https://open.tiktokapis.com/v2/user/info/?fields=open_id,avatar_url,display_name,username"
	tiktokRevokeURL     = "https://open.tiktokapis.com/v2/oauth/revoke/"
)

// providerIdentity is the canonical external identity plus its freshly
// exchanged credentials, before encryption.
type providerIdentity struct {
	AccountID      string
	AccountName    string
	Username       string
	ProfilePicture string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
}

func tokenExpiry(tok *oauth2.Token) time.Time {
	if !tok.Expiry.IsZero() {
		return tok.Expiry
	}
	// Page tokens and some long-lived grants come back without an expiry;
	// treat them as valid for sixty days, the platform's documented window.
	return time.Now().Add(60 * 24 * time.Hour)
}

func (s *connectService) resolveLinkedin(ctx context.Context, code string) (*providerIdentity, error) {
	tok, err := s.linkedinOAuth().Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: linkedin", ErrTokenExchangeFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, linkedinUserInfoURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: linkedin userinfo", ErrTokenExchangeFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("linkedin userinfo returned non-200 status")
		return nil, fmt.Errorf("%w: linkedin userinfo status %d", ErrTokenExchangeFailed, resp.StatusCode)
	}

	var info transfer.LinkedinUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if info.Sub == "" {
		return nil, ErrNoEligibleAccount
	}

	return &providerIdentity{
		AccountID:      info.Sub,
		AccountName:    info.Name,
		Username:       info.Name,
		ProfilePicture: info.Picture,
		AccessToken:    tok.AccessToken,
		RefreshToken:   tok.RefreshToken,
		ExpiresAt:      tokenExpiry(tok),
	}, nil
}

func (s *connectService) resolveFacebook(ctx context.Context, code string) (*providerIdentity, error) {
	tok, err := s.facebookOAuth().Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: facebook", ErrTokenExchangeFailed)
	}

	pages, err := s.listManagedPages(ctx, tok.AccessToken, "id,name,access_token")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNoEligibleAccount
	}

	page := pages[0]
	return &providerIdentity{
		AccountID:   page.ID,
		AccountName: page.Name,
		Username:    page.Name,
		AccessToken: page.AccessToken,
		// The user token is kept as the refresh credential for the
		// fb_exchange_token grant.
		RefreshToken: tok.AccessToken,
		ExpiresAt:    tokenExpiry(tok),
	}, nil
}

// resolveInstagram walks the managed Pages looking for one with a linked
// Instagram business account; connecting without one is an eligibility
// failure, not an exchange failure.
func (s *connectService) resolveInstagram(ctx context.Context, code string) (*providerIdentity, error) {
	tok, err := s.instagramOAuth().Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: instagram", ErrTokenExchangeFailed)
	}

	pages, err := s.listManagedPages(ctx, tok.AccessToken, "id,name,access_token,instagram_business_account")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		if page.InstagramBusinessAccount == nil || page.InstagramBusinessAccount.ID == "" {
			continue
		}

		profile, err := s.instagramProfile(ctx, page.InstagramBusinessAccount.ID, page.AccessToken)
		if err != nil {
			slog.Info(err.Error())
			continue
		}

		return &providerIdentity{
			AccountID:      profile.ID,
			AccountName:    profile.Name,
			Username:       profile.Username,
			ProfilePicture: profile.ProfilePicture,
			AccessToken:    page.AccessToken,
			RefreshToken:   tok.AccessToken,
			ExpiresAt:      tokenExpiry(tok),
		}, nil
	}

	return nil, ErrNoEligibleAccount
}

func (s *connectService) listManagedPages(ctx context.Context, userToken, fields string) ([]transfer.FacebookPageDetail, error) {
	endpoint := fmt.Sprintf("%s/me/accounts?fields=%s&access_token=%s", facebookGraphURL, url.QueryEscape(fields), url.QueryEscape(userToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: page listing", ErrTokenExchangeFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("facebook page listing returned non-200 status")
		return nil, fmt.Errorf("%w: page listing status %d", ErrTokenExchangeFailed, resp.StatusCode)
	}

	var result struct {
		Data []transfer.FacebookPageDetail `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return result.Data, nil
}

func (s *connectService) instagramProfile(ctx context.Context, igUserID, pageToken string) (*transfer.InstagramProfile, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=id,username,name,profile_picture_url&access_token=%s", facebookGraphURL, igUserID, url.QueryEscape(pageToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram profile lookup returned status %d", resp.StatusCode)
	}

	var profile transfer.InstagramProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *connectService) resolveTiktok(ctx context.Context, code string) (*providerIdentity, error) {
	data := url.Values{}
	data.Add("client_key", s.cfg.TiktokClientKey)
	data.Add("client_secret", s.cfg.TiktokClientSecret)
	data.Add("code", code)
	data.Add("grant_type", "authorization_code")
	data.Add("redirect_uri", s.cfg.TiktokRedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: tiktok", ErrTokenExchangeFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("tiktok token endpoint returned non-200 status")
		return nil, fmt.Errorf("%w: tiktok status %d", ErrTokenExchangeFailed, resp.StatusCode)
	}

	var tokenResponse transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.AccessToken == "" {
		return nil, ErrTokenExchangeFailed
	}

	userInfo, err := s.tiktokUserInfo(ctx, tokenResponse.AccessToken)
	if err != nil {
		return nil, err
	}
	if userInfo.OpenID == "" {
		return nil, ErrNoEligibleAccount
	}

	return &providerIdentity{
		AccountID:      userInfo.OpenID,
		AccountName:    userInfo.DisplayName,
		Username:       userInfo.Username,
		ProfilePicture: userInfo.AvatarURL,
		AccessToken:    tokenResponse.AccessToken,
		RefreshToken:   tokenResponse.RefreshToken,
		ExpiresAt:      time.Now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second),
	}, nil
}

func (s *connectService) tiktokUserInfo(ctx context.Context, accessToken string) (*transfer.TiktokUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tiktokUserInfoURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var result transfer.TiktokUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &result.Data.User, nil
}

// revokeAccess is best-effort cleanup on disconnect; a failed revocation
// is logged and otherwise ignored.
func (s *connectService) revokeAccess(ctx context.Context, account *models.SocialAccount, token string) {
	switch account.Provider {
	case models.ProviderTiktok:
		data := url.Values{}
		data.Set("client_key", s.cfg.TiktokClientKey)
		data.Set("client_secret", s.cfg.TiktokClientSecret)
		data.Set("token", token)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokRevokeURL, strings.NewReader(data.Encode()))
		if err != nil {
			slog.Info(err.Error())
			return
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := s.client.Do(req)
		if err != nil {
			slog.Info(err.Error())
			return
		}
		resp.Body.Close()

	case models.ProviderFacebook, models.ProviderInstagram:
		endpoint := fmt.Sprintf("%s/%s/permissions?access_token=%s", facebookGraphURL, account.ProviderAccountID, url.QueryEscape(token))
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
		if err != nil {
			slog.Info(err.Error())
			return
		}

		resp, err := s.client.Do(req)
		if err != nil {
			slog.Info(err.Error())
			return
		}
		resp.Body.Close()
	}
}
