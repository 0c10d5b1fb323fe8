package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var cryptoKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	ciphertext, err := Encrypt([]byte("provider-access-token"), cryptoKey)
	require.NoError(t, err)
	require.NotEqual(t, "provider-access-token", ciphertext)

	plaintext, err := Decrypt(ciphertext, cryptoKey)
	require.NoError(t, err)
	require.Equal(t, "provider-access-token", plaintext)
}

func TestEncrypt_NoncesDiffer(t *testing.T) {
	first, err := Encrypt([]byte("same-input"), cryptoKey)
	require.NoError(t, err)
	second, err := Encrypt([]byte("same-input"), cryptoKey)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestDecrypt_WrongKey(t *testing.T) {
	ciphertext, err := Encrypt([]byte("secret"), cryptoKey)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, []byte("ffffffffffffffffffffffffffffffff"))
	require.Error(t, err)
}

func TestDecrypt_TruncatedCiphertext(t *testing.T) {
	_, err := Decrypt("c2hvcnQ=", cryptoKey)
	require.Error(t, err)
}

func TestEncrypt_BadKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("secret"), []byte("too-short"))
	require.Error(t, err)
}
