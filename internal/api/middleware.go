package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bookendsapp/bookends-server/internal/domain"
	domainerrors "github.com/bookendsapp/bookends-server/internal/errors"
)

// billingWarningHeader carries the grace countdown on reads served to
// accounts whose paid period has ended.
const billingWarningHeader = "X-Billing-Warning"

// billingGate blocks library reads for accounts whose grace period has run
// out, and stamps the warning header during grace. It only ever acts on GET
// requests to gated paths; writes, auth, account settings and billing itself
// stay reachable so the user can fix things. Runs after bearer verification
// but never replaces it: unauthenticated requests pass through for the
// handler to reject.
func (s *Server) billingGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !gatedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.verifyBearer(r.Header.Get("Authorization"))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		account, err := s.store.GetAccount(r.Context(), claims.AccountID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		status := account.BillingStatus(time.Now())
		switch status.State {
		case domain.BillingLapsed:
			s.writeError(w, http.StatusPaymentRequired, string(domainerrors.CodeBillingExpired),
				"your paid period has ended; update your card at /api/v1/billing")
			return
		case domain.BillingGrace:
			w.Header().Set(billingWarningHeader,
				fmt.Sprintf("account expired; %d day(s) of grace remaining", status.DaysLeft))
		}

		next.ServeHTTP(w, r)
	})
}

// gatedPath reports whether the path is part of the library surface the
// billing gate protects.
func gatedPath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/books") || strings.HasPrefix(path, "/api/v1/sets")
}

// rateLimitAuth throttles the credential endpoints per client IP.
func (s *Server) rateLimitAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/v1/auth/") {
			next.ServeHTTP(w, r)
			return
		}

		key := getClientIP(r)
		if !s.authLimiter.Allow(key) {
			s.logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
			s.writeError(w, http.StatusTooManyRequests, "", "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeError emits an error envelope outside of huma, for middleware that
// short-circuits before a handler runs.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	env := &Envelope{
		V:       envelopeVersion,
		Success: false,
		Error:   message,
		Code:    code,
		Message: message,
	}
	if err := json.MarshalWrite(w, env); err != nil {
		s.logger.WithError(err).Error("failed to write error response")
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if ip := extractIP(r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	// Strip the port from RemoteAddr.
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
