// Package billing talks to the payment processor's REST API. Customers carry
// a subscription to the app's single plan; the processor reports the paid-up
// period end, which drives the access gate.
package billing

import (
	"context"
	"time"
)

// Customer is the slice of the processor's customer record we care about.
type Customer struct {
	ID        string
	Email     string
	CardLast4 string
	PeriodEnd time.Time
}

// Client is the payment processor API surface the services use. The HTTP
// implementation is in client_http.go; tests swap in a fake.
type Client interface {
	// CreateCustomer registers a customer with a card token and subscribes
	// them to the plan. Returns the processor's customer record.
	CreateCustomer(ctx context.Context, email, cardToken string) (*Customer, error)

	// GetCustomer fetches the current customer record.
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)

	// UpdateCard swaps the card on file for an existing customer.
	UpdateCard(ctx context.Context, customerID, cardToken string) (*Customer, error)

	// DeleteCustomer cancels the subscription and removes the customer.
	DeleteCustomer(ctx context.Context, customerID string) error
}
