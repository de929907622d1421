package auth

import "time"

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// EmailPurpose tags a single-use email token with the action it authorizes.
// Verification requires an exact purpose match, so an activation token can
// never be replayed against the password reset endpoint.
type EmailPurpose string

const (
	PurposeActivate    EmailPurpose = "activation-key"
	PurposeRecover     EmailPurpose = "recover-key"
	PurposeChangeEmail EmailPurpose = "email-update-key"
)

// EmailClaims represents the claims stored in a purpose-tagged email token.
type EmailClaims struct {
	AccountID string       `json:"account_id"`
	Email     string       `json:"email"`
	Purpose   EmailPurpose `json:"purpose"`
}
