package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookendsapp/bookends-server/internal/domain"
)

func (s *Server) registerAccountRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentAccount",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts/me",
		Summary:     "Get current account",
		Description: "Returns the authenticated account",
		Tags:        []string{"Accounts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentAccount)

	huma.Register(s.api, huma.Operation{
		OperationID: "changePassword",
		Method:      http.MethodPut,
		Path:        "/api/v1/accounts/password",
		Summary:     "Change password",
		Description: "Sets a new password for the signed-in account",
		Tags:        []string{"Accounts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleChangePassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "requestEmailChange",
		Method:      http.MethodPost,
		Path:        "/api/v1/accounts/email",
		Summary:     "Request email change",
		Description: "Emails a confirmation link to the new address. The account's email only changes once that link is followed.",
		Tags:        []string{"Accounts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRequestEmailChange)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmEmailChange",
		Method:      http.MethodPost,
		Path:        "/api/v1/accounts/email/confirm",
		Summary:     "Confirm email change",
		Description: "Applies an email change using the emailed key",
		Tags:        []string{"Accounts"},
	}, s.handleConfirmEmailChange)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAccount",
		Method:      http.MethodDelete,
		Path:        "/api/v1/accounts/me",
		Summary:     "Delete account",
		Description: "Removes the account and everything it owns",
		Tags:        []string{"Accounts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAccount)
}

// === DTOs ===

// GetAccountInput contains parameters for fetching the current account.
type GetAccountInput struct {
	Authorization string `header:"Authorization"`
}

// AccountOutput wraps the account response for Huma.
type AccountOutput struct {
	Body AccountResponse
}

// ChangePasswordRequest is the request body for a password change.
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=1024" doc:"New password"`
}

// ChangePasswordInput wraps the password change request for Huma.
type ChangePasswordInput struct {
	Authorization string `header:"Authorization"`
	Body          ChangePasswordRequest
}

// EmailChangeRequest is the request body for an email change request.
type EmailChangeRequest struct {
	Email string `json:"email" validate:"required,email,max=254" doc:"New email address"`
}

// EmailChangeInput wraps the email change request for Huma.
type EmailChangeInput struct {
	Authorization string `header:"Authorization"`
	Body          EmailChangeRequest
}

// ConfirmEmailChangeRequest is the request body for confirming an email change.
type ConfirmEmailChangeRequest struct {
	Key string `json:"key" validate:"required" doc:"Emailed confirmation key"`
}

// ConfirmEmailChangeInput wraps the confirmation request for Huma.
type ConfirmEmailChangeInput struct {
	Body ConfirmEmailChangeRequest
}

// DeleteAccountInput contains parameters for account deletion.
type DeleteAccountInput struct {
	Authorization string `header:"Authorization"`
}

// === Handlers ===

func (s *Server) handleGetCurrentAccount(ctx context.Context, input *GetAccountInput) (*AccountOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	account, err := s.services.Accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &AccountOutput{Body: mapAccountResponse(account)}, nil
}

func (s *Server) handleChangePassword(ctx context.Context, input *ChangePasswordInput) (*MessageOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Accounts.ChangePassword(ctx, accountID, input.Body.Password); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Your password has been updated."}}, nil
}

func (s *Server) handleRequestEmailChange(ctx context.Context, input *EmailChangeInput) (*MessageOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Accounts.RequestEmailChange(ctx, accountID, input.Body.Email); err != nil {
		return nil, err
	}

	return &MessageOutput{
		Body: MessageResponse{Message: "Check the new address for a confirmation link."},
	}, nil
}

func (s *Server) handleConfirmEmailChange(ctx context.Context, input *ConfirmEmailChangeInput) (*MessageOutput, error) {
	if err := s.services.Accounts.ConfirmEmailChange(ctx, input.Body.Key); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Your email has been updated."}}, nil
}

func (s *Server) handleDeleteAccount(ctx context.Context, input *DeleteAccountInput) (*MessageOutput, error) {
	accountID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Accounts.Delete(ctx, accountID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Your account has been deleted."}}, nil
}

// === Helpers ===

func mapAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:             account.ID,
		Email:          account.Email,
		EmailConfirmed: account.EmailConfirmed,
		ExpiresAt:      account.ExpiresAt,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
}
