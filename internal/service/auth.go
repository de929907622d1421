package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bookendsapp/bookends-server/internal/auth"
	"github.com/bookendsapp/bookends-server/internal/domain"
	domainerrors "github.com/bookendsapp/bookends-server/internal/errors"
	"github.com/bookendsapp/bookends-server/internal/id"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/mail"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// AuthService handles registration, activation, sign-in and the emailed
// recovery flow. Session lifecycle is delegated to SessionService.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	sessions     *SessionService
	sender       mail.Sender
	builder      *mail.Builder
	logger       *logger.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessions *SessionService,
	sender mail.Sender,
	builder *mail.Builder,
	logger *logger.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		sessions:     sessions,
		sender:       sender,
		builder:      builder,
		logger:       logger,
	}
}

// RegisterRequest contains account registration data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// RegisterResponse contains the result of a registration request.
type RegisterResponse struct {
	AccountID string `json:"account_id"`
	Message   string `json:"message"`
}

// LoginRequest contains sign-in credentials.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"` // Extracted from request by handler
}

// AuthResponse contains a signed-in account and its tokens.
type AuthResponse struct {
	Account *domain.Account `json:"account"`
	SessionResponse
}

// Register creates a new account and sends the activation email.
// The account starts with a trial period; the access gate takes over when
// it runs out.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	accountID, err := id.Generate("acct")
	if err != nil {
		return nil, fmt.Errorf("generate account ID: %w", err)
	}

	now := time.Now()
	account := &domain.Account{
		ID:           accountID,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Active:       true,
		ExpiresAt:    now.Add(domain.TrialPeriod),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("there's already an account with that email")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.sendActivationEmail(ctx, account); err != nil {
		// The account exists; the user can ask for recovery later.
		s.logger.WithError(err).Warn("failed to send activation email", "account_id", accountID)
	}

	s.logger.Info("account registered", "account_id", accountID, "email", account.Email)

	return &RegisterResponse{
		AccountID: accountID,
		Message:   "Your account has been created. Check your email for your activation link.",
	}, nil
}

func (s *AuthService) sendActivationEmail(ctx context.Context, account *domain.Account) error {
	token, err := s.tokenService.GenerateEmailToken(account, account.Email, auth.PurposeActivate)
	if err != nil {
		return fmt.Errorf("generate activation token: %w", err)
	}
	if err := s.sender.Send(ctx, s.builder.Activation(account.Email, token)); err != nil {
		return domainerrors.Unavailable("activation email could not be sent, try again later").WithCause(err)
	}
	return nil
}

// Activate confirms an account's email address via the emailed token and
// signs the account in. Invalid, expired or repurposed tokens read as the
// link not existing.
func (s *AuthService) Activate(ctx context.Context, token, ipAddress string) (*AuthResponse, error) {
	claims, err := s.tokenService.VerifyEmailToken(token, auth.PurposeActivate)
	if err != nil {
		return nil, domainerrors.NotFound("activation link is invalid or has expired").WithCause(err)
	}

	account, err := s.store.GetAccount(ctx, claims.AccountID)
	if err != nil {
		return nil, domainerrors.NotFound("activation link is invalid or has expired").WithCause(err)
	}

	account.EmailConfirmed = true
	account.Touch()
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	sessionResp, err := s.sessions.CreateSession(ctx, account, ipAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("account activated", "account_id", account.ID)

	return &AuthResponse{Account: account, SessionResponse: *sessionResp}, nil
}

// Login authenticates an account and creates a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	account, err := s.store.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists
			return nil, domainerrors.InvalidCredentials("that's not the right email or password")
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	valid, err := auth.VerifyPassword(account.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("that's not the right email or password")
	}

	if !account.Active {
		return nil, domainerrors.Forbidden("this account has been closed")
	}

	sessionResp, err := s.sessions.CreateSession(ctx, account, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("account signed in", "account_id", account.ID)

	return &AuthResponse{Account: account, SessionResponse: *sessionResp}, nil
}

// Refresh rotates the token pair for a session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ipAddress string) (*AuthResponse, error) {
	sessionResp, account, err := s.sessions.RefreshSession(ctx, refreshToken, ipAddress)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Account: account, SessionResponse: *sessionResp}, nil
}

// Logout ends the session matching the refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Logout(ctx, refreshToken)
}

// Recover sends an account recovery email. It reports success whether or
// not the address has an account, so the endpoint can't be used to probe
// for registered emails.
func (s *AuthService) Recover(ctx context.Context, email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return domainerrors.Validation("email must be a valid email address")
	}

	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			s.logger.Debug("recovery requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	token, err := s.tokenService.GenerateEmailToken(account, account.Email, auth.PurposeRecover)
	if err != nil {
		return fmt.Errorf("generate recovery token: %w", err)
	}

	if err := s.sender.Send(ctx, s.builder.Recovery(account.Email, token)); err != nil {
		return domainerrors.Unavailable("recovery email could not be sent, try again later").WithCause(err)
	}

	s.logger.Info("recovery email sent", "account_id", account.ID)
	return nil
}

// ResetPassword sets a new password using an emailed recovery token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokenService.VerifyEmailToken(token, auth.PurposeRecover)
	if err != nil {
		return domainerrors.NotFound("recovery link is invalid or has expired").WithCause(err)
	}

	if err := validate.Var(newPassword, "required,min=8,max=1024"); err != nil {
		return domainerrors.Validation("password must be at least 8 characters")
	}

	account, err := s.store.GetAccount(ctx, claims.AccountID)
	if err != nil {
		return domainerrors.NotFound("recovery link is invalid or has expired").WithCause(err)
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = passwordHash
	account.Touch()
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("password reset via recovery link", "account_id", account.ID)
	return nil
}
