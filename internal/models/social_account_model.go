package models

import (
	"time"
)

type SocialAccount struct {
	ID                int64     `db:"id" json:"id"`
	TenantID          int64     `db:"tenant_id" json:"tenant_id"`
	Provider          string    `db:"provider" json:"provider"`
	ProviderAccountID string    `db:"provider_account_id" json:"provider_account_id"`
	AccountName       string    `db:"account_name" json:"account_name"`
	AccountUsername   string    `db:"account_username" json:"account_username"`
	ProfilePicture    string    `db:"profile_picture_url" json:"profile_picture"`
	AccessToken       string    `db:"access_token" json:"-"`
	RefreshToken      string    `db:"refresh_token" json:"-"`
	TokenExpiresAt    time.Time `db:"token_expires_at" json:"token_expires_at"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	LastError         string    `db:"last_error" json:"last_error,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ProviderLinkedin  = "linkedin"
	ProviderInstagram = "instagram"
	ProviderFacebook  = "facebook"
	ProviderTiktok    = "tiktok"
)

// Providers is the closed set of platforms the registry dispatches over.
var Providers = []string{ProviderLinkedin, ProviderInstagram, ProviderFacebook, ProviderTiktok}

func IsValidProvider(p string) bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}
