package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Generate("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestParseExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Generate("alice")
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenAtExpiryInstant(t *testing.T) {
	// A token whose expiry equals the current instant is already invalid
	tm := NewTokenManager("test-secret", 0)

	token, err := tm.Generate("alice")
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, err := tm.Generate("alice")
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseMalformedToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := tm.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestParseMissingSubject(t *testing.T) {
	// A validly signed, unexpired token without a subject claim is invalid,
	// not a distinct error
	tm := NewTokenManager("test-secret", time.Hour)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
