package service

import "errors"

// Publish errors. Handlers map these onto HTTP statuses; nothing below
// the executor escapes as an untyped failure.
var (
	ErrPublicationNotFound   = errors.New("publication not found")
	ErrPublishingInProgress  = errors.New("publication attempt already in progress")
	ErrMaxAttemptsReached    = errors.New("publication attempt limit reached")
	ErrNoProvider            = errors.New("no active social account for publication")
	ErrContentNotPublishable = errors.New("content is missing or not approved")
)

// OAuth flow errors. The callback handler converts all of these into a
// redirect with an error code; the browser never sees a raw failure.
var (
	ErrProviderNotConfigured = errors.New("provider credentials not configured")
	ErrInvalidState          = errors.New("oauth state is invalid")
	ErrStateExpired          = errors.New("oauth state has expired")
	ErrTokenExchangeFailed   = errors.New("authorization code exchange failed")
	ErrNoEligibleAccount     = errors.New("no eligible account found for provider")
)

// ErrorCode flattens a taxonomy error into the short code carried on
// redirect query strings.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrProviderNotConfigured):
		return "provider_not_configured"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrStateExpired):
		return "state_expired"
	case errors.Is(err, ErrTokenExchangeFailed):
		return "token_exchange_failed"
	case errors.Is(err, ErrNoEligibleAccount):
		return "no_eligible_account"
	default:
		return "connection_failed"
	}
}
