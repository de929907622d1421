package api

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/bookendsapp/bookends-server/internal/auth"
	"github.com/bookendsapp/bookends-server/internal/billing"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/mail"
	"github.com/bookendsapp/bookends-server/internal/service"
	"github.com/bookendsapp/bookends-server/internal/store/sqlite"
)

const testTokenKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fakeBillingClient is an in-memory payment processor for handler tests.
type fakeBillingClient struct {
	customers map[string]*billing.Customer
	nextID    int
	periodEnd time.Time
}

func newFakeBillingClient() *fakeBillingClient {
	return &fakeBillingClient{
		customers: make(map[string]*billing.Customer),
		periodEnd: time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second),
	}
}

func (f *fakeBillingClient) CreateCustomer(_ context.Context, email, cardToken string) (*billing.Customer, error) {
	f.nextID++
	cust := &billing.Customer{
		ID:        fmt.Sprintf("cus_%03d", f.nextID),
		Email:     email,
		CardLast4: cardToken[len(cardToken)-4:],
		PeriodEnd: f.periodEnd,
	}
	f.customers[cust.ID] = cust
	return cust, nil
}

func (f *fakeBillingClient) GetCustomer(_ context.Context, customerID string) (*billing.Customer, error) {
	cust, ok := f.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("no such customer: %s", customerID)
	}
	return cust, nil
}

func (f *fakeBillingClient) UpdateCard(_ context.Context, customerID, cardToken string) (*billing.Customer, error) {
	cust, ok := f.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("no such customer: %s", customerID)
	}
	cust.CardLast4 = cardToken[len(cardToken)-4:]
	return cust, nil
}

func (f *fakeBillingClient) DeleteCustomer(_ context.Context, customerID string) error {
	delete(f.customers, customerID)
	return nil
}

// testServer wraps the API server and its collaborators for handler tests.
type testServer struct {
	*Server
	api     humatest.TestAPI
	st      *sqlite.Store
	mailer  *mail.Recorder
	billing *fakeBillingClient
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := sqlite.Open(dbPath, slogger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := logger.New(logger.Config{Writer: io.Discard, Format: "json"})

	tokens, err := auth.NewTokenService(testTokenKey, 15*time.Minute, 30*24*time.Hour, 24*time.Hour)
	require.NoError(t, err)

	mailer := &mail.Recorder{}
	builder := mail.NewBuilder("https://books.example.com", "Bookends")
	billingClient := newFakeBillingClient()

	sessions := service.NewSessionService(st, tokens, log)
	services := &Services{
		Auth:     service.NewAuthService(st, tokens, sessions, mailer, builder, log),
		Accounts: service.NewAccountService(st, tokens, sessions, billingClient, mailer, builder, log),
		Books:    service.NewBookService(st, log),
		Sets:     service.NewSetService(st, log),
		Billing:  service.NewBillingService(st, billingClient, mailer, builder, log),
		Sessions: sessions,
	}

	srv := NewServer(st, services, tokens, log)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:  srv,
		api:     humatest.Wrap(t, srv.api),
		st:      st,
		mailer:  mailer,
		billing: billingClient,
	}
}

// decodeEnvelope unmarshals a recorded response body into a typed envelope.
func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()

	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

// emailedKey digs the single-use key out of the most recent recorded email.
func emailedKey(t *testing.T, ts *testServer) string {
	t.Helper()

	msg := ts.mailer.Last()
	require.NotEmpty(t, msg.Body, "expected an email to have been sent")

	_, after, found := strings.Cut(msg.Body, "key=")
	require.True(t, found, "email body carries no key: %s", msg.Body)

	key := after
	if i := strings.IndexAny(key, "\"< \n"); i >= 0 {
		key = key[:i]
	}
	return key
}

// registerAndActivate walks a fresh account through sign-up and returns its
// bearer token and account ID.
func registerAndActivate(t *testing.T, ts *testServer, email string) (token, accountID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	registered := decodeEnvelope[RegisterResponse](t, resp.Body.Bytes())
	require.True(t, registered.Success)

	resp = ts.api.Post("/api/v1/auth/activate", map[string]any{
		"key": emailedKey(t, ts),
	})
	require.Equal(t, http.StatusOK, resp.Code, "activate failed: %s", resp.Body.String())

	activated := decodeEnvelope[AuthResponse](t, resp.Body.Bytes())
	require.True(t, activated.Success)
	require.NotEmpty(t, activated.Data.AccessToken)

	return activated.Data.AccessToken, activated.Data.Account.ID
}

// bearer formats an Authorization header argument for humatest calls.
func bearer(token string) string {
	return "Authorization: Bearer " + token
}
