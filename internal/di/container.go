// Package di provides dependency injection configuration for the Bookends server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookendsapp/bookends-server/internal/auth"
	"github.com/bookendsapp/bookends-server/internal/billing"
	"github.com/bookendsapp/bookends-server/internal/config"
	"github.com/bookendsapp/bookends-server/internal/di/providers"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/mail"
	"github.com/bookendsapp/bookends-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Collaborators
	do.Provide(injector, providers.ProvideMailSender)
	do.Provide(injector, providers.ProvideMailBuilder)
	do.Provide(injector, providers.ProvideBillingClient)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideAccountService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideSetService)
	do.Provide(injector, providers.ProvideBillingService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Collaborators
	_ = do.MustInvoke[mail.Sender](injector)
	_ = do.MustInvoke[*mail.Builder](injector)
	_ = do.MustInvoke[billing.Client](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.AccountService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.SetService](injector)
	_ = do.MustInvoke[*service.BillingService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
