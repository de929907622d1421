package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookendsapp/bookends-server/internal/errors"
)

const customerJSON = `{
	"id": "cus_123",
	"email": "reader@example.com",
	"sources": {"data": [{"last4": "4242"}]},
	"subscriptions": {"data": [{"current_period_end": 1767225600}]}
}`

func TestHTTPClient_CreateCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "reader@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "tok_visa", r.PostForm.Get("source"))
		assert.Equal(t, "bookends1", r.PostForm.Get("plan"))

		w.Write([]byte(customerJSON))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "sk_test", "bookends1")

	cust, err := client.CreateCustomer(context.Background(), "reader@example.com", "tok_visa")
	require.NoError(t, err)

	assert.Equal(t, "cus_123", cust.ID)
	assert.Equal(t, "4242", cust.CardLast4)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), cust.PeriodEnd)
}

func TestHTTPClient_UpdateCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers/cus_123", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "tok_mastercard", r.PostForm.Get("source"))
		w.Write([]byte(customerJSON))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "sk_test", "bookends1")

	cust, err := client.UpdateCard(context.Background(), "cus_123", "tok_mastercard")
	require.NoError(t, err)
	assert.Equal(t, "cus_123", cust.ID)
}

func TestHTTPClient_DeleteCustomer(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Write([]byte(`{"id": "cus_123", "deleted": true}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "sk_test", "bookends1")
	require.NoError(t, client.DeleteCustomer(context.Background(), "cus_123"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestHTTPClient_APIErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "Your card was declined."}}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "sk_test", "bookends1")

	_, err := client.CreateCustomer(context.Background(), "reader@example.com", "tok_declined")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
	assert.Contains(t, err.Error(), "card was declined")
}

func TestHTTPClient_UnreachableIsUnavailable(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", "sk_test", "bookends1")

	_, err := client.GetCustomer(context.Background(), "cus_123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}
