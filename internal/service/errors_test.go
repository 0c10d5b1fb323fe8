package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrProviderNotConfigured, "provider_not_configured"},
		{ErrInvalidState, "invalid_state"},
		{ErrStateExpired, "state_expired"},
		{ErrTokenExchangeFailed, "token_exchange_failed"},
		{ErrNoEligibleAccount, "no_eligible_account"},
		{fmt.Errorf("wrapped: %w", ErrStateExpired), "state_expired"},
		{errors.New("something else"), "connection_failed"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.code, ErrorCode(tc.err))
	}
}
