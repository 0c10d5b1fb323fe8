package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

// StateClaims is the OAuth redirect round-trip payload. It is self-contained
// and signed, so no server-side state storage is needed; expiry bounds its
// validity window.
type StateClaims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}
