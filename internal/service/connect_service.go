package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/linkedin"

	config "github.com/talentwire/socialcast/configs"
	"github.com/talentwire/socialcast/internal/models"
	"github.com/talentwire/socialcast/internal/repository"
	"github.com/talentwire/socialcast/pkg/utils"
)

const tiktokAuthURL = "https://www.tiktok.com/v2/auth/authorize"

type ConnectService interface {
	BeginAuthorization(ctx context.Context, tenantID, userID int64, provider string) (string, error)
	CompleteAuthorization(ctx context.Context, provider, code, state string) (*models.SocialAccount, error)
	List(ctx context.Context, tenantID int64) ([]*models.SocialAccount, error)
	Disconnect(ctx context.Context, tenantID, accountID int64) error
}

type connectService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	ar     repository.AuditRepository
	client *http.Client
}

func NewConnectService(cfg config.Config, sa repository.SocialAccountRepository, ar repository.AuditRepository) ConnectService {
	return &connectService{
		cfg:    cfg,
		sa:     sa,
		ar:     ar,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *connectService) linkedinOAuth() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.LinkedinClientID,
		ClientSecret: s.cfg.LinkedinClientSecret,
		RedirectURL:  s.cfg.LinkedinRedirectURI,
		Scopes:       []string{"openid", "profile", "w_member_social"},
		Endpoint:     linkedin.Endpoint,
	}
}

func (s *connectService) facebookOAuth() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.FacebookClientID,
		ClientSecret: s.cfg.FacebookClientSecret,
		RedirectURL:  s.cfg.FacebookRedirectURI,
		Scopes:       []string{"pages_show_list", "pages_read_engagement", "pages_manage_posts", "public_profile"},
		Endpoint:     facebook.Endpoint,
	}
}

func (s *connectService) instagramOAuth() *oauth2.Config {
	// Instagram business accounts are reached through the Facebook login
	// dialog; the IG identity is resolved from the linked Page afterwards.
	return &oauth2.Config{
		ClientID:     s.cfg.InstagramClientID,
		ClientSecret: s.cfg.InstagramClientSecret,
		RedirectURL:  s.cfg.InstagramRedirectURI,
		Scopes:       []string{"instagram_basic", "instagram_content_publish", "pages_show_list", "business_management"},
		Endpoint:     facebook.Endpoint,
	}
}

func (s *connectService) BeginAuthorization(ctx context.Context, tenantID, userID int64, provider string) (string, error) {
	state, err := EncodeState(s.cfg.SecretKey,
		strconv.FormatInt(tenantID, 10),
		strconv.FormatInt(userID, 10),
		provider, time.Now())
	if err != nil {
		return "", err
	}

	switch provider {
	case models.ProviderLinkedin:
		if s.cfg.LinkedinClientID == "" || s.cfg.LinkedinClientSecret == "" {
			return "", ErrProviderNotConfigured
		}
		return s.linkedinOAuth().AuthCodeURL(state), nil

	case models.ProviderFacebook:
		if s.cfg.FacebookClientID == "" || s.cfg.FacebookClientSecret == "" {
			return "", ErrProviderNotConfigured
		}
		return s.facebookOAuth().AuthCodeURL(state), nil

	case models.ProviderInstagram:
		if s.cfg.InstagramClientID == "" || s.cfg.InstagramClientSecret == "" {
			return "", ErrProviderNotConfigured
		}
		return s.instagramOAuth().AuthCodeURL(state), nil

	case models.ProviderTiktok:
		if s.cfg.TiktokClientKey == "" || s.cfg.TiktokClientSecret == "" {
			return "", ErrProviderNotConfigured
		}
		params := url.Values{}
		params.Add("client_key", s.cfg.TiktokClientKey)
		params.Add("scope", "user.info.basic,user.info.profile,video.publish,video.upload")
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.TiktokRedirectURI)
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", tiktokAuthURL, params.Encode()), nil

	default:
		return "", fmt.Errorf("unknown provider %q", provider)
	}
}

func (s *connectService) CompleteAuthorization(ctx context.Context, provider, code, state string) (*models.SocialAccount, error) {
	claims, err := DecodeState(s.cfg.SecretKey, state)
	if err != nil {
		return nil, err
	}
	if claims.Provider != provider {
		slog.Info("oauth state provider mismatch", "expected", claims.Provider, "got", provider)
		return nil, ErrInvalidState
	}

	tenantID, err := strconv.ParseInt(claims.TenantID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return nil, ErrInvalidState
	}

	if code == "" {
		return nil, ErrTokenExchangeFailed
	}

	var identity *providerIdentity
	switch provider {
	case models.ProviderLinkedin:
		identity, err = s.resolveLinkedin(ctx, code)
	case models.ProviderFacebook:
		identity, err = s.resolveFacebook(ctx, code)
	case models.ProviderInstagram:
		identity, err = s.resolveInstagram(ctx, code)
	case models.ProviderTiktok:
		identity, err = s.resolveTiktok(ctx, code)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	if err != nil {
		return nil, err
	}

	encryptedAccess, err := utils.Encrypt([]byte(identity.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}
	var encryptedRefresh string
	if identity.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(identity.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
	}

	account := &models.SocialAccount{
		TenantID:          tenantID,
		Provider:          provider,
		ProviderAccountID: identity.AccountID,
		AccountName:       identity.AccountName,
		AccountUsername:   identity.Username,
		ProfilePicture:    identity.ProfilePicture,
		AccessToken:       encryptedAccess,
		RefreshToken:      encryptedRefresh,
		TokenExpiresAt:    identity.ExpiresAt,
	}

	id, err := s.sa.Upsert(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to store social account: %w", err)
	}
	account.ID = id

	if _, err := s.ar.Create(ctx, &models.AuditEvent{
		TenantID:  tenantID,
		EventType: models.AuditAccountConnected,
		SubjectID: id,
		Detail:    fmt.Sprintf("%s account %s connected", provider, identity.AccountName),
	}); err != nil {
		slog.Info(err.Error())
	}

	return account, nil
}

func (s *connectService) List(ctx context.Context, tenantID int64) ([]*models.SocialAccount, error) {
	if tenantID == 0 {
		err := errors.New("tenant id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.sa.ListInfoByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error getting social accounts")
	}

	return accounts, nil
}

func (s *connectService) Disconnect(ctx context.Context, tenantID, accountID int64) error {
	if tenantID == 0 || accountID == 0 {
		err := errors.New("tenant id or account id is not valid")
		slog.Info(err.Error())
		return err
	}

	isOwned, err := s.sa.CheckByTenant(ctx, accountID, tenantID)
	if err != nil {
		return err
	}
	if !isOwned {
		err = errors.New("social account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	account, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("unable to get social account info")
	}

	if account != nil && account.AccessToken != "" {
		if token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey)); err == nil {
			s.revokeAccess(ctx, account, token)
		}
	}

	if err := s.sa.Disconnect(ctx, accountID); err != nil {
		return fmt.Errorf("error disabling account")
	}

	if _, err := s.ar.Create(ctx, &models.AuditEvent{
		TenantID:  tenantID,
		EventType: models.AuditAccountDisconnected,
		SubjectID: accountID,
	}); err != nil {
		slog.Info(err.Error())
	}

	return nil
}
