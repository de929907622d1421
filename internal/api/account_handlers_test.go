package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangePassword(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := registerAndActivate(t, ts, "reader@example.com")

	resp := ts.api.Put("/api/v1/accounts/password", bearer(token), map[string]any{
		"password": "a stronger passphrase",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "a stronger passphrase",
	})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestEmailChangeFlow(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := registerAndActivate(t, ts, "old@example.com")

	resp := ts.api.Post("/api/v1/accounts/email", bearer(token), map[string]any{
		"email": "new@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// The confirmation goes to the new address; nothing has changed yet.
	confirmation := ts.mailer.Last()
	assert.Equal(t, "new@example.com", confirmation.To)

	resp = ts.api.Get("/api/v1/accounts/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	me := decodeEnvelope[AccountResponse](t, resp.Body.Bytes())
	assert.Equal(t, "old@example.com", me.Data.Email)

	resp = ts.api.Post("/api/v1/accounts/email/confirm", map[string]any{
		"key": emailedKey(t, ts),
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/accounts/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	me = decodeEnvelope[AccountResponse](t, resp.Body.Bytes())
	assert.Equal(t, "new@example.com", me.Data.Email)

	// The old address no longer signs in; the new one does.
	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "old@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "new@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestConfirmEmailChangeRejectsOtherKeys(t *testing.T) {
	ts := setupTestServer(t)
	registerAndActivate(t, ts, "reader@example.com")

	resp := ts.api.Post("/api/v1/auth/recover", map[string]any{
		"email": "reader@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/accounts/email/confirm", map[string]any{
		"key": emailedKey(t, ts),
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteAccountRemovesEverything(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := registerAndActivate(t, ts, "reader@example.com")

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title": "Soon Gone",
		"sets":  "{Doomed}",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Put("/api/v1/billing", bearer(token), map[string]any{
		"card_token": "tok_visa_4242",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/accounts/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	// The payment customer was cancelled along the way.
	assert.Empty(t, ts.billing.customers)

	// The token authenticates but its account is gone.
	resp = ts.api.Get("/api/v1/accounts/me", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
