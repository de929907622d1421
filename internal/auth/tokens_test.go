package auth

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookendsapp/bookends-server/internal/domain"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RejectsBadKeys(t *testing.T) {
	_, err := NewTokenService("deadbeef", time.Minute, time.Hour, time.Hour)
	assert.Error(t, err, "short key should be rejected")

	_, err = NewTokenService(strings.Repeat("z", 64), time.Minute, time.Hour, time.Hour)
	assert.Error(t, err, "non-hex key should be rejected")
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	account := &domain.Account{ID: "acct_abc123", Email: "reader@example.com"}

	token, err := svc.GenerateAccessToken(account)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, account.Email, claims.Email)
	assert.Equal(t, account.ID, claims.Subject)
	assert.True(t, strings.HasPrefix(claims.TokenID, "token_"))
}

func TestVerifyAccessToken_RejectsTampered(t *testing.T) {
	svc := newTestTokenService(t)
	account := &domain.Account{ID: "acct_abc123", Email: "reader@example.com"}

	token, err := svc.GenerateAccessToken(account)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token + "x")
	assert.Error(t, err)

	_, err = svc.VerifyAccessToken("not a token at all")
	assert.Error(t, err)
}

func TestVerifyAccessToken_RejectsWrongKey(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService(strings.Repeat("ab", 32), time.Minute, time.Hour, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(&domain.Account{ID: "acct_abc123", Email: "reader@example.com"})
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestEmailToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	account := &domain.Account{ID: "acct_abc123", Email: "reader@example.com"}

	for _, purpose := range []EmailPurpose{PurposeActivate, PurposeRecover, PurposeChangeEmail} {
		token, err := svc.GenerateEmailToken(account, "reader@example.com", purpose)
		require.NoError(t, err)

		claims, err := svc.VerifyEmailToken(token, purpose)
		require.NoError(t, err, "purpose %s", purpose)
		assert.Equal(t, account.ID, claims.AccountID)
		assert.Equal(t, "reader@example.com", claims.Email)
		assert.Equal(t, purpose, claims.Purpose)
	}
}

func TestVerifyEmailToken_RejectsPurposeMismatch(t *testing.T) {
	svc := newTestTokenService(t)
	account := &domain.Account{ID: "acct_abc123", Email: "reader@example.com"}

	token, err := svc.GenerateEmailToken(account, account.Email, PurposeActivate)
	require.NoError(t, err)

	// An activation link must not work as a password reset link.
	_, err = svc.VerifyEmailToken(token, PurposeRecover)
	assert.Error(t, err)

	_, err = svc.VerifyEmailToken(token, PurposeChangeEmail)
	assert.Error(t, err)
}

func TestVerifyEmailToken_RejectsExpired(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Minute, time.Hour, -time.Second)
	require.NoError(t, err)

	account := &domain.Account{ID: "acct_abc123", Email: "reader@example.com"}
	token, err := svc.GenerateEmailToken(account, account.Email, PurposeRecover)
	require.NoError(t, err)

	_, err = svc.VerifyEmailToken(token, PurposeRecover)
	assert.Error(t, err)
}

func TestRefreshToken_HashIsStable(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	other, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "refresh tokens should be unique")

	h1 := HashRefreshToken(token)
	h2 := HashRefreshToken(token)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, HashRefreshToken(other))

	// Hash output is hex.
	_, err = hex.DecodeString(h1)
	assert.NoError(t, err)
}
