package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bookendsapp/bookends-server/internal/billing"
	"github.com/bookendsapp/bookends-server/internal/domain"
	domainerrors "github.com/bookendsapp/bookends-server/internal/errors"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/mail"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// Webhook event types posted by the payment processor. Anything else is
// acknowledged and ignored.
const (
	EventChargeSucceeded = "charge.succeeded"
	EventChargeFailed    = "charge.failed"
)

// BillingService attaches, updates and stops recurring billing, and applies
// the processor's webhook events.
type BillingService struct {
	store   store.Store
	client  billing.Client
	sender  mail.Sender
	builder *mail.Builder
	logger  *logger.Logger
}

// NewBillingService creates a new billing service.
func NewBillingService(
	store store.Store,
	client billing.Client,
	sender mail.Sender,
	builder *mail.Builder,
	logger *logger.Logger,
) *BillingService {
	return &BillingService{
		store:   store,
		client:  client,
		sender:  sender,
		builder: builder,
		logger:  logger,
	}
}

// Overview is the billing state shown on the account's billing page.
type Overview struct {
	HasBilling bool                 `json:"has_billing"`
	CardLast4  string               `json:"card_last4,omitempty"`
	ExpiresAt  time.Time            `json:"expires_at"`
	Status     domain.BillingStatus `json:"status"`
}

// Overview returns the account's current billing state.
func (s *BillingService) Overview(ctx context.Context, accountID string) (*Overview, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &Overview{
		HasBilling: account.HasBilling(),
		CardLast4:  account.CardLast4,
		ExpiresAt:  account.ExpiresAt,
		Status:     account.BillingStatus(time.Now()),
	}, nil
}

// UpdateBilling attaches a card to the account. First time through it
// creates a processor customer subscribed to the plan; afterwards it swaps
// the card on the existing customer. Either way the account's paid-up
// window extends to the subscription's period end.
func (s *BillingService) UpdateBilling(ctx context.Context, accountID, cardToken string) (*Overview, error) {
	if cardToken == "" {
		return nil, domainerrors.Validation("card token is required")
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	var customer *billing.Customer
	if account.HasBilling() {
		customer, err = s.client.UpdateCard(ctx, account.CustomerID, cardToken)
	} else {
		customer, err = s.client.CreateCustomer(ctx, account.Email, cardToken)
	}
	if err != nil {
		// Processor failures are retryable; nothing was committed locally.
		return nil, err
	}

	account.CustomerID = customer.ID
	account.CardLast4 = customer.CardLast4
	if !customer.PeriodEnd.IsZero() {
		account.ExpiresAt = customer.PeriodEnd
	}
	account.Touch()

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("billing updated", "account_id", account.ID, "customer_id", customer.ID)

	return &Overview{
		HasBilling: true,
		CardLast4:  account.CardLast4,
		ExpiresAt:  account.ExpiresAt,
		Status:     account.BillingStatus(time.Now()),
	}, nil
}

// StopBilling cancels the processor customer. The account keeps its
// remaining paid-up time and simply runs out.
func (s *BillingService) StopBilling(ctx context.Context, accountID string) (*Overview, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	if !account.HasBilling() {
		return nil, domainerrors.Conflict("no billing is set up on this account")
	}

	if err := s.client.DeleteCustomer(ctx, account.CustomerID); err != nil {
		return nil, err
	}

	account.CustomerID = ""
	account.CardLast4 = ""
	account.Touch()

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("billing stopped", "account_id", account.ID, "expires_at", account.ExpiresAt)

	return &Overview{
		HasBilling: false,
		ExpiresAt:  account.ExpiresAt,
		Status:     account.BillingStatus(time.Now()),
	}, nil
}

// WebhookEvent is the envelope the payment processor posts.
type WebhookEvent struct {
	Type     string `json:"type"`
	Customer string `json:"customer"`
	Data     struct {
		Subscription struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
		} `json:"subscription"`
	} `json:"data"`
}

// HandleWebhookEvent applies a processor event. A succeeded charge extends
// the matching account to the reported period end; replays write the same
// timestamp again. A failed charge sends the account a heads-up email.
// Unknown event types and unknown customers are no-ops.
//
// Errors are reported to the caller for logging, but the webhook endpoint
// acknowledges the event regardless.
func (s *BillingService) HandleWebhookEvent(ctx context.Context, event WebhookEvent) error {
	switch event.Type {
	case EventChargeSucceeded:
		return s.applyChargeSucceeded(ctx, event)
	case EventChargeFailed:
		return s.applyChargeFailed(ctx, event)
	default:
		s.logger.Debug("ignoring webhook event", "type", event.Type)
		return nil
	}
}

func (s *BillingService) applyChargeSucceeded(ctx context.Context, event WebhookEvent) error {
	account, err := s.store.GetAccountByCustomerID(ctx, event.Customer)
	if err != nil {
		return fmt.Errorf("charge.succeeded for unknown customer %s: %w", event.Customer, err)
	}

	periodEnd := time.Unix(event.Data.Subscription.CurrentPeriodEnd, 0).UTC()
	account.ExpiresAt = periodEnd
	account.Touch()
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("extend account %s: %w", account.ID, err)
	}

	if err := s.sender.Send(ctx, s.builder.PaymentReceipt(account.Email, periodEnd.Format("January 2, 2006"))); err != nil {
		s.logger.WithError(err).Warn("failed to send receipt email", "account_id", account.ID)
	}

	s.logger.Info("charge succeeded", "account_id", account.ID, "expires_at", periodEnd)
	return nil
}

func (s *BillingService) applyChargeFailed(ctx context.Context, event WebhookEvent) error {
	account, err := s.store.GetAccountByCustomerID(ctx, event.Customer)
	if err != nil {
		return fmt.Errorf("charge.failed for unknown customer %s: %w", event.Customer, err)
	}

	if err := s.sender.Send(ctx, s.builder.PaymentProblem(account.Email)); err != nil {
		s.logger.WithError(err).Warn("failed to send payment problem email", "account_id", account.ID)
	}

	s.logger.Info("charge failed", "account_id", account.ID)
	return nil
}
