package domain

import "time"

// Session is a signed-in device. The refresh token is stored hashed; the
// access token is stateless and carries the session ID as its JTI.
type Session struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"account_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
}

// IsExpired reports whether the session's refresh token can no longer be used.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Seen records activity on the session.
func (s *Session) Seen() {
	s.LastSeenAt = time.Now()
}
