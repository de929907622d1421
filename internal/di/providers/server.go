package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookendsapp/bookends-server/internal/api"
	"github.com/bookendsapp/bookends-server/internal/auth"
	"github.com/bookendsapp/bookends-server/internal/config"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Accounts: do.MustInvoke[*service.AccountService](i),
		Books:    do.MustInvoke[*service.BookService](i),
		Sets:     do.MustInvoke[*service.SetService](i),
		Billing:  do.MustInvoke[*service.BillingService](i),
		Sessions: do.MustInvoke[*service.SessionService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, tokens, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "external_url", cfg.Server.ExternalURL)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
