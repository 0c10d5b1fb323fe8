package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/talentwire/socialcast/internal/transfer"
)

// StateValidity bounds the OAuth redirect round trip. A state older than
// this is rejected even if its signature checks out.
const StateValidity = 10 * time.Minute

// EncodeState signs the {tenant, user, provider} payload into the opaque
// state string carried through the provider redirect. Possession of a
// valid, unexpired state is the sole authorization check on the callback.
func EncodeState(secretKey, tenantID, userID, provider string, issuedAt time.Time) (string, error) {
	claims := transfer.StateClaims{
		TenantID: tenantID,
		UserID:   userID,
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(StateValidity)),
			Issuer:    "socialcast",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return signed, nil
}

func DecodeState(secretKey, state string) (*transfer.StateClaims, error) {
	token, err := jwt.ParseWithClaims(state, &transfer.StateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid state signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		slog.Info(err.Error())
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrStateExpired
		}
		return nil, ErrInvalidState
	}

	claims, ok := token.Claims.(*transfer.StateClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidState
	}
	return claims, nil
}
