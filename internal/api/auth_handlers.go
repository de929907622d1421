package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookendsapp/bookends-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register new account",
		Description: "Creates an account and emails an activation link. The account starts on a free trial.",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "activate",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/activate",
		Summary:     "Activate account",
		Description: "Confirms the email address via the emailed key and signs the account in.",
		Tags:        []string{"Authentication"},
	}, s.handleActivate)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Sign in",
		Description: "Authenticates an account and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Sign out",
		Description: "Ends the session matching the refresh token",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "recover",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/recover",
		Summary:     "Request account recovery",
		Description: "Emails a recovery link. Responds the same whether or not the address has an account.",
		Tags:        []string{"Authentication"},
	}, s.handleRecover)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetPassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/recover/reset",
		Summary:     "Reset password",
		Description: "Sets a new password using an emailed recovery key",
		Tags:        []string{"Authentication"},
	}, s.handleResetPassword)
}

// === DTOs ===

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"Email address"`
	Password string `json:"password" validate:"required,min=8,max=1024" doc:"Password"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// RegisterResponse contains the result of a registration.
type RegisterResponse struct {
	AccountID string `json:"account_id" doc:"Created account ID"`
	Message   string `json:"message" doc:"Status message"`
}

// RegisterOutput wraps the register response for Huma.
type RegisterOutput struct {
	Body RegisterResponse
}

// ActivateRequest is the request body for account activation.
type ActivateRequest struct {
	Key string `json:"key" validate:"required" doc:"Emailed activation key"`
}

// ActivateInput wraps the activation request with headers for Huma.
type ActivateInput struct {
	Body          ActivateRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LoginRequest is the request body for sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"Email address"`
	Password string `json:"password" validate:"required,max=1024" doc:"Password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	Body          RefreshRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LogoutRequest is the request body for sign-out.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token of the session to end"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body LogoutRequest
}

// RecoverRequest is the request body for account recovery.
type RecoverRequest struct {
	Email string `json:"email" validate:"required,email,max=254" doc:"Email address"`
}

// RecoverInput wraps the recovery request for Huma.
type RecoverInput struct {
	Body RecoverRequest
}

// ResetPasswordRequest is the request body for a recovery password reset.
type ResetPasswordRequest struct {
	Key      string `json:"key" validate:"required" doc:"Emailed recovery key"`
	Password string `json:"password" validate:"required,min=8,max=1024" doc:"New password"`
}

// ResetPasswordInput wraps the reset request for Huma.
type ResetPasswordInput struct {
	Body ResetPasswordRequest
}

// AuthResponse contains authentication tokens and account info.
type AuthResponse struct {
	AccessToken  string          `json:"access_token" doc:"PASETO access token"`
	RefreshToken string          `json:"refresh_token" doc:"Refresh token"`
	SessionID    string          `json:"session_id" doc:"Session identifier"`
	TokenType    string          `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn    int             `json:"expires_in" doc:"Access token expiry in seconds"`
	Account      AccountResponse `json:"account" doc:"Signed-in account"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{
		Body: RegisterResponse{
			AccountID: resp.AccountID,
			Message:   resp.Message,
		},
	}, nil
}

func (s *Server) handleActivate(ctx context.Context, input *ActivateInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Activate(ctx, input.Body.Key, extractIP(input.XForwardedFor, input.XRealIP))
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		IPAddress: extractIP(input.XForwardedFor, input.XRealIP),
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, input.Body.RefreshToken, extractIP(input.XForwardedFor, input.XRealIP))
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.RefreshToken); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Signed out"}}, nil
}

func (s *Server) handleRecover(ctx context.Context, input *RecoverInput) (*MessageOutput, error) {
	if err := s.services.Auth.Recover(ctx, input.Body.Email); err != nil {
		return nil, err
	}

	return &MessageOutput{
		Body: MessageResponse{Message: "If that address has an account, a recovery email is on its way."},
	}, nil
}

func (s *Server) handleResetPassword(ctx context.Context, input *ResetPasswordInput) (*MessageOutput, error) {
	if err := s.services.Auth.ResetPassword(ctx, input.Body.Key, input.Body.Password); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Your password has been updated."}}, nil
}

// === Helpers ===

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		SessionID:    resp.SessionID,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		Account:      mapAccountResponse(resp.Account),
	}
}
