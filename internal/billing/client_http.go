package billing

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bookendsapp/bookends-server/internal/errors"
)

// HTTPClient implements Client against a Stripe-style REST API: form-encoded
// requests, bearer secret key, JSON responses.
type HTTPClient struct {
	apiBase   string
	secretKey string
	plan      string
	client    *http.Client
}

func NewHTTPClient(apiBase, secretKey, plan string) *HTTPClient {
	return &HTTPClient{
		apiBase:   strings.TrimRight(apiBase, "/"),
		secretKey: secretKey,
		plan:      plan,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) CreateCustomer(ctx context.Context, email, cardToken string) (*Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("source", cardToken)
	form.Set("plan", c.plan)

	var resp customerResponse
	if err := c.do(ctx, http.MethodPost, "/customers", form, &resp); err != nil {
		return nil, err
	}
	return resp.toCustomer(), nil
}

func (c *HTTPClient) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var resp customerResponse
	if err := c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toCustomer(), nil
}

func (c *HTTPClient) UpdateCard(ctx context.Context, customerID, cardToken string) (*Customer, error) {
	form := url.Values{}
	form.Set("source", cardToken)

	var resp customerResponse
	if err := c.do(ctx, http.MethodPost, "/customers/"+url.PathEscape(customerID), form, &resp); err != nil {
		return nil, err
	}
	return resp.toCustomer(), nil
}

func (c *HTTPClient) DeleteCustomer(ctx context.Context, customerID string) error {
	return c.do(ctx, http.MethodDelete, "/customers/"+url.PathEscape(customerID), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return fmt.Errorf("create billing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Unavailable("payment processor unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Unavailable("read payment processor response").WithCause(err)
	}

	if resp.StatusCode >= 300 {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return errors.Unavailable(fmt.Sprintf("payment processor: %s", apiErr.Error.Message))
		}
		return errors.Unavailable(fmt.Sprintf("payment processor returned status %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Unavailable("decode payment processor response").WithCause(err)
	}
	return nil
}

// Stripe-style response shapes. Timestamps are unix seconds.
type customerResponse struct {
	ID            string             `json:"id"`
	Email         string             `json:"email"`
	Sources       data[cardSource]   `json:"sources"`
	Subscriptions data[subscription] `json:"subscriptions"`
}

type data[T any] struct {
	Data []T `json:"data"`
}

type cardSource struct {
	Last4 string `json:"last4"`
}

type subscription struct {
	CurrentPeriodEnd int64 `json:"current_period_end"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (r *customerResponse) toCustomer() *Customer {
	cust := &Customer{ID: r.ID, Email: r.Email}
	if len(r.Sources.Data) > 0 {
		cust.CardLast4 = r.Sources.Data[0].Last4
	}
	if len(r.Subscriptions.Data) > 0 {
		cust.PeriodEnd = time.Unix(r.Subscriptions.Data[0].CurrentPeriodEnd, 0).UTC()
	}
	return cust
}
