package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookendsapp/bookends-server/internal/auth"
	"github.com/bookendsapp/bookends-server/internal/billing"
	"github.com/bookendsapp/bookends-server/internal/config"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/mail"
	"github.com/bookendsapp/bookends-server/internal/service"
)

// ProvideMailSender provides the outbound email sender. With no SendGrid key
// configured, emails are written to the log instead of sent.
func ProvideMailSender(i do.Injector) (mail.Sender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Mail.SendGridKey == "" {
		log.Warn("No SendGrid key configured, emails will only be logged")
		return mail.NewLogSender(log), nil
	}

	log.Info("SendGrid sender configured", "from", cfg.Mail.FromEmail)
	return mail.NewSendGridSender(cfg.Mail.SendGridKey, cfg.Mail.FromEmail, cfg.Mail.FromName), nil
}

// ProvideMailBuilder provides the email message builder.
func ProvideMailBuilder(i do.Injector) (*mail.Builder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return mail.NewBuilder(cfg.Server.ExternalURL, cfg.Mail.FromName), nil
}

// ProvideBillingClient provides the payment processor client.
func ProvideBillingClient(i do.Injector) (billing.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Billing.SecretKey == "" {
		log.Warn("No billing secret key configured, card operations will fail until one is set")
	}

	return billing.NewHTTPClient(cfg.Billing.APIBase, cfg.Billing.SecretKey, cfg.Billing.Plan), nil
}

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokens, log), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	sender := do.MustInvoke[mail.Sender](i)
	builder := do.MustInvoke[*mail.Builder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, sessions, sender, builder, log), nil
}

// ProvideAccountService provides the account settings service.
func ProvideAccountService(i do.Injector) (*service.AccountService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	billingClient := do.MustInvoke[billing.Client](i)
	sender := do.MustInvoke[mail.Sender](i)
	builder := do.MustInvoke[*mail.Builder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAccountService(storeHandle.Store, tokens, sessions, billingClient, sender, builder, log), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, log), nil
}

// ProvideSetService provides the set service.
func ProvideSetService(i do.Injector) (*service.SetService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSetService(storeHandle.Store, log), nil
}

// ProvideBillingService provides the billing service.
func ProvideBillingService(i do.Injector) (*service.BillingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	billingClient := do.MustInvoke[billing.Client](i)
	sender := do.MustInvoke[mail.Sender](i)
	builder := do.MustInvoke[*mail.Builder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBillingService(storeHandle.Store, billingClient, sender, builder, log), nil
}
