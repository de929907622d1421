// Package api provides the HTTP API server and handlers for the Bookends application.
package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookendsapp/bookends-server/internal/auth"
	"github.com/bookendsapp/bookends-server/internal/logger"
	"github.com/bookendsapp/bookends-server/internal/ratelimit"
	"github.com/bookendsapp/bookends-server/internal/service"
	"github.com/bookendsapp/bookends-server/internal/store"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Accounts *service.AccountService
	Books    *service.BookService
	Sets     *service.SetService
	Billing  *service.BillingService
	Sessions *service.SessionService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Store
	services    *Services
	tokens      *auth.TokenService
	router      *chi.Mux
	api         huma.API
	logger      *logger.Logger
	authLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, tokens *auth.TokenService, log *logger.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:    st,
		services: services,
		tokens:   tokens,
		router:   router,
		logger:   log,
		// 20 sign-in attempts per minute per IP, small burst.
		authLimiter: ratelimit.New(20.0/60.0, 10),
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Bookends API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack. Order matters: the
// billing gate and rate limiter run after the standard plumbing, before
// any handler.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{billingWarningHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.rateLimitAuth)
	s.router.Use(s.billingGate)
}

// setupRoutes registers every endpoint. Most go through huma; the payment
// webhook stays a raw chi handler because its contract (always 200, opaque
// body) doesn't fit the envelope.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerAccountRoutes()
	s.registerBookRoutes()
	s.registerSetRoutes()
	s.registerBillingRoutes()

	s.router.Post("/webhooks/billing", s.handleBillingWebhook)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// shared response DTOs

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// AccountResponse contains account data in API responses.
type AccountResponse struct {
	ID             string    `json:"id" doc:"Account ID"`
	Email          string    `json:"email" doc:"Email address"`
	EmailConfirmed bool      `json:"email_confirmed" doc:"Whether the email has been confirmed"`
	ExpiresAt      time.Time `json:"expires_at" doc:"End of the paid billing period"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt      time.Time `json:"updated_at" doc:"Last update timestamp"`
}
