package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookendsapp/bookends-server/internal/auth"
	"github.com/bookendsapp/bookends-server/internal/billing"
	"github.com/bookendsapp/bookends-server/internal/domain"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/mail"
	"github.com/bookendsapp/bookends-server/internal/store/sqlite"
)

const testTokenKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// fakeBillingClient is an in-memory payment processor for tests.
type fakeBillingClient struct {
	customers map[string]*billing.Customer
	nextID    int
	periodEnd time.Time
	failWith  error
}

func newFakeBillingClient() *fakeBillingClient {
	return &fakeBillingClient{
		customers: make(map[string]*billing.Customer),
		periodEnd: time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second),
	}
}

func (f *fakeBillingClient) CreateCustomer(_ context.Context, email, cardToken string) (*billing.Customer, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.nextID++
	cust := &billing.Customer{
		ID:        fmt.Sprintf("cus_%03d", f.nextID),
		Email:     email,
		CardLast4: last4(cardToken),
		PeriodEnd: f.periodEnd,
	}
	f.customers[cust.ID] = cust
	return cust, nil
}

func (f *fakeBillingClient) GetCustomer(_ context.Context, customerID string) (*billing.Customer, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	cust, ok := f.customers[customerID]
	if !ok {
		return nil, billingNotFound(customerID)
	}
	return cust, nil
}

func (f *fakeBillingClient) UpdateCard(_ context.Context, customerID, cardToken string) (*billing.Customer, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	cust, ok := f.customers[customerID]
	if !ok {
		return nil, billingNotFound(customerID)
	}
	cust.CardLast4 = last4(cardToken)
	return cust, nil
}

func (f *fakeBillingClient) DeleteCustomer(_ context.Context, customerID string) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.customers, customerID)
	return nil
}

func last4(token string) string {
	if len(token) < 4 {
		return token
	}
	return token[len(token)-4:]
}

func billingNotFound(id string) error {
	return &billingError{id: id}
}

type billingError struct{ id string }

func (e *billingError) Error() string { return "no such customer: " + e.id }

// testEnv bundles everything the service tests need.
type testEnv struct {
	store    *sqlite.Store
	tokens   *auth.TokenService
	mailer   *mail.Recorder
	billing  *fakeBillingClient
	sessions *SessionService
	auth     *AuthService
	accounts *AccountService
	books    *BookService
	sets     *SetService
	payments *BillingService
}

func newTestEnv(t *testing.T) *testEnv {
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

	sessions := NewSessionService(st, tokens, log)

	return &testEnv{
		store:    st,
		tokens:   tokens,
		mailer:   mailer,
		billing:  billingClient,
		sessions: sessions,
		auth:     NewAuthService(st, tokens, sessions, mailer, builder, log),
		accounts: NewAccountService(st, tokens, sessions, billingClient, mailer, builder, log),
		books:    NewBookService(st, log),
		sets:     NewSetService(st, log),
		payments: NewBillingService(st, billingClient, mailer, builder, log),
	}
}

// register creates and activates an account, returning it signed in.
func (e *testEnv) register(t *testing.T, email, password string) *domain.Account {
	t.Helper()
	ctx := context.Background()

	resp, err := e.auth.Register(ctx, RegisterRequest{Email: email, Password: password})
	require.NoError(t, err)

	account, err := e.accounts.Get(ctx, resp.AccountID)
	require.NoError(t, err)
	return account
}
