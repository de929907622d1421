package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookendsapp/bookends-server/internal/auth"
)

// authenticateRequest validates the Authorization header and returns the
// account ID from the token claims.
func (s *Server) authenticateRequest(authHeader string) (string, error) {
	claims, err := s.verifyBearer(authHeader)
	if err != nil {
		return "", err
	}
	return claims.AccountID, nil
}

// verifyBearer parses "Bearer <token>" and verifies the access token.
func (s *Server) verifyBearer(authHeader string) (*auth.AccessClaims, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.tokens.VerifyAccessToken(parts[1])
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return claims, nil
}

// extractIP picks the client IP from forwarding headers, first hop wins.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
