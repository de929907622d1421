package service

import (
	"context"
	"fmt"

	"github.com/bookendsapp/bookends-server/internal/auth"
	"github.com/bookendsapp/bookends-server/internal/billing"
	"github.com/bookendsapp/bookends-server/internal/domain"
	domainerrors "github.com/bookendsapp/bookends-server/internal/errors"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/mail"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// AccountService handles settings on an existing account: password and
// email changes, and deletion.
type AccountService struct {
	store        store.Store
	tokenService *auth.TokenService
	sessions     *SessionService
	billing      billing.Client
	sender       mail.Sender
	builder      *mail.Builder
	logger       *logger.Logger
}

// NewAccountService creates a new account settings service.
func NewAccountService(
	store store.Store,
	tokenService *auth.TokenService,
	sessions *SessionService,
	billingClient billing.Client,
	sender mail.Sender,
	builder *mail.Builder,
	logger *logger.Logger,
) *AccountService {
	return &AccountService{
		store:        store,
		tokenService: tokenService,
		sessions:     sessions,
		billing:      billingClient,
		sender:       sender,
		builder:      builder,
		logger:       logger,
	}
}

// Get returns the account.
func (s *AccountService) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("account not found")
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// ChangePassword sets a new password for a signed-in account.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, newPassword string) error {
	if err := validate.Var(newPassword, "required,min=8,max=1024"); err != nil {
		return domainerrors.Validation("password must be at least 8 characters")
	}

	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
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

	s.logger.Info("password changed", "account_id", account.ID)
	return nil
}

// RequestEmailChange emails a confirmation link to the NEW address. The
// account's email only changes once that link is followed.
func (s *AccountService) RequestEmailChange(ctx context.Context, accountID, newEmail string) error {
	if err := validate.Var(newEmail, "required,email"); err != nil {
		return domainerrors.Validation("email must be a valid email address")
	}

	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	token, err := s.tokenService.GenerateEmailToken(account, newEmail, auth.PurposeChangeEmail)
	if err != nil {
		return fmt.Errorf("generate email change token: %w", err)
	}

	if err := s.sender.Send(ctx, s.builder.EmailChange(newEmail, token)); err != nil {
		return domainerrors.Unavailable("confirmation email could not be sent, try again later").WithCause(err)
	}

	s.logger.Info("email change requested", "account_id", account.ID)
	return nil
}

// ConfirmEmailChange applies an email change using the emailed token.
// The token carries the new address; the account it was issued for is the
// only account it can change.
func (s *AccountService) ConfirmEmailChange(ctx context.Context, token string) error {
	claims, err := s.tokenService.VerifyEmailToken(token, auth.PurposeChangeEmail)
	if err != nil {
		return domainerrors.NotFound("confirmation link is invalid or has expired").WithCause(err)
	}

	account, err := s.store.GetAccount(ctx, claims.AccountID)
	if err != nil {
		return domainerrors.NotFound("confirmation link is invalid or has expired").WithCause(err)
	}

	account.Email = claims.Email
	account.EmailConfirmed = true
	account.Touch()
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.AlreadyExists("there's already an account with that email")
		}
		return fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("email updated", "account_id", account.ID)
	return nil
}

// Delete removes the account and everything it owns. Books, sets and
// sessions go with it. An attached payment customer is cancelled best
// effort; a processor outage doesn't block deletion.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	if account.HasBilling() {
		if err := s.billing.DeleteCustomer(ctx, account.CustomerID); err != nil {
			s.logger.WithError(err).Warn("failed to cancel payment customer during account deletion",
				"account_id", account.ID)
		}
	}

	if err := s.store.DeleteAccount(ctx, accountID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("account not found")
		}
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account deleted", "account_id", accountID)
	return nil
}
