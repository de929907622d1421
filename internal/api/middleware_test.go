package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setExpiry rewinds or advances an account's paid-up date directly in the
// store so the gate sees the state we want.
func setExpiry(t *testing.T, ts *testServer, accountID string, expiresAt time.Time) {
	t.Helper()
	account, err := ts.st.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	account.ExpiresAt = expiresAt
	require.NoError(t, ts.st.UpdateAccount(context.Background(), account))
}

func TestBillingGatePaidUp(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := registerAndActivate(t, ts, "reader@example.com")

	resp := ts.api.Get("/api/v1/books", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.Header().Get(billingWarningHeader))
}

func TestBillingGateGraceWarning(t *testing.T) {
	ts := setupTestServer(t)
	token, accountID := registerAndActivate(t, ts, "reader@example.com")

	setExpiry(t, ts, accountID, time.Now().Add(-25*time.Hour))

	resp := ts.api.Get("/api/v1/books", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "account expired; 5 day(s) of grace remaining", resp.Header().Get(billingWarningHeader))

	resp = ts.api.Get("/api/v1/sets", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get(billingWarningHeader))
}

func TestBillingGateLapsedBlocksReads(t *testing.T) {
	ts := setupTestServer(t)
	token, accountID := registerAndActivate(t, ts, "reader@example.com")

	setExpiry(t, ts, accountID, time.Now().Add(-8*24*time.Hour))

	for _, path := range []string{"/api/v1/books", "/api/v1/sets"} {
		resp := ts.api.Get(path, bearer(token))
		require.Equal(t, http.StatusPaymentRequired, resp.Code, "expected 402 for %s", path)

		env := decodeEnvelope[struct{}](t, resp.Body.Bytes())
		assert.False(t, env.Success)
		assert.Equal(t, "BILLING_EXPIRED", env.Code)
	}
}

func TestBillingGateLeavesRecoveryRoutesOpen(t *testing.T) {
	ts := setupTestServer(t)
	token, accountID := registerAndActivate(t, ts, "reader@example.com")

	setExpiry(t, ts, accountID, time.Now().Add(-8*24*time.Hour))

	// Writes are not gated; a lapsed reader can still log books.
	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title": "The Scar",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// The account and billing surfaces stay reachable so the card can
	// be fixed.
	resp = ts.api.Get("/api/v1/accounts/me", bearer(token))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/billing", bearer(token))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:4567"
	assert.Equal(t, "192.0.2.10", getClientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getClientIP(r))

	// First forwarded hop wins.
	r.Header.Set("X-Forwarded-For", "203.0.113.9,198.51.100.7")
	assert.Equal(t, "203.0.113.9", getClientIP(r))
}

func TestBillingGateIgnoresUnauthenticatedRequests(t *testing.T) {
	ts := setupTestServer(t)

	// Without a valid token the gate stands aside and the handler's own
	// auth check answers.
	resp := ts.api.Get("/api/v1/books")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
