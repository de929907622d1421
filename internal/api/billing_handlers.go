package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookendsapp/bookends-server/internal/domain"
	"github.com/bookendsapp/bookends-server/internal/service"
)

func (s *Server) registerBillingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBilling",
		Method:      http.MethodGet,
		Path:        "/api/v1/billing",
		Summary:     "Get billing overview",
		Description: "Returns the account's billing state: card on file, paid-up window, grace countdown",
		Tags:        []string{"Billing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBilling)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBilling",
		Method:      http.MethodPut,
		Path:        "/api/v1/billing",
		Summary:     "Attach or update card",
		Description: "Starts recurring billing with the given card token, or swaps the card on the existing subscription",
		Tags:        []string{"Billing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBilling)

	huma.Register(s.api, huma.Operation{
		OperationID: "stopBilling",
		Method:      http.MethodDelete,
		Path:        "/api/v1/billing",
		Summary:     "Stop billing",
		Description: "Cancels the subscription. The account keeps its remaining paid-up time.",
		Tags:        []string{"Billing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleStopBilling)
}

// === DTOs ===

// GetBillingInput contains parameters for the billing overview.
type GetBillingInput struct {
	Authorization string `header:"Authorization"`
}

// UpdateBillingRequest is the request body for attaching a card.
type UpdateBillingRequest struct {
	CardToken string `json:"card_token" validate:"required" doc:"Single-use card token from the payment processor's JS library"`
}

// UpdateBillingInput wraps the card update request for Huma.
type UpdateBillingInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateBillingRequest
}

// BillingResponse contains billing state in API responses.
type BillingResponse struct {
	HasBilling bool                 `json:"has_billing" doc:"Whether a card is on file"`
	CardLast4  string               `json:"card_last4,omitempty" doc:"Last four digits of the card on file"`
	ExpiresAt  time.Time            `json:"expires_at" doc:"End of the paid billing period"`
	Status     domain.BillingStatus `json:"status" doc:"Billing state relative to now"`
}

// BillingOutput wraps the billing response for Huma.
type BillingOutput struct {
	Body BillingResponse
}

// === Handlers ===

func (s *Server) handleGetBilling(ctx context.Context, input *GetBillingInput) (*BillingOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Billing.Overview(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &BillingOutput{Body: mapBillingResponse(overview)}, nil
}

func (s *Server) handleUpdateBilling(ctx context.Context, input *UpdateBillingInput) (*BillingOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Billing.UpdateBilling(ctx, accountID, input.Body.CardToken)
	if err != nil {
		return nil, err
	}

	return &BillingOutput{Body: mapBillingResponse(overview)}, nil
}

func (s *Server) handleStopBilling(ctx context.Context, input *GetBillingInput) (*BillingOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Billing.StopBilling(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &BillingOutput{Body: mapBillingResponse(overview)}, nil
}

// handleBillingWebhook receives the payment processor's events. It is a
// raw chi handler rather than a huma operation: the processor retries on
// anything but 200, so the endpoint acknowledges every request it can
// read, and problems go to the log instead of the response.
func (s *Server) handleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	var event service.WebhookEvent
	if err := json.UnmarshalRead(r.Body, &event); err != nil {
		s.logger.WithError(err).Warn("unreadable billing webhook payload")
	} else if err := s.services.Billing.HandleWebhookEvent(r.Context(), event); err != nil {
		s.logger.WithError(err).Warn("billing webhook event not applied",
			"type", event.Type, "customer", event.Customer)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.MarshalWrite(w, map[string]bool{"received": true}); err != nil {
		s.logger.WithError(err).Error("failed to write webhook acknowledgement")
	}
}

// === Helpers ===

func mapBillingResponse(o *service.Overview) BillingResponse {
	return BillingResponse{
		HasBilling: o.HasBilling,
		CardLast4:  o.CardLast4,
		ExpiresAt:  o.ExpiresAt,
		Status:     o.Status,
	}
}
