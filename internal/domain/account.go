package domain

import "time"

// GracePeriod is how long after billing expiration an account keeps read
// access, with a warning, before being locked out of the library.
const GracePeriod = 7 * 24 * time.Hour

// TrialPeriod is the paid-up window a fresh account starts with before any
// billing is attached.
const TrialPeriod = 30 * 24 * time.Hour

// BillingState classifies an account relative to its billing expiration.
type BillingState string

const (
	// BillingOK means the account's paid period has not ended.
	BillingOK BillingState = "ok"
	// BillingGrace means the paid period ended less than GracePeriod ago.
	BillingGrace BillingState = "grace"
	// BillingLapsed means the grace period has run out.
	BillingLapsed BillingState = "lapsed"
)

// BillingStatus is the result of evaluating an account's billing expiration
// at a point in time.
type BillingStatus struct {
	State BillingState `json:"state"`
	// DaysLeft is the number of whole days of grace remaining.
	// Only meaningful when State is BillingGrace.
	DaysLeft int `json:"days_left,omitempty"`
}

// Account represents a registered Bookends user.
// Each account owns its books and sets; nothing is shared between accounts.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // argon2id, never serialized
	EmailConfirmed bool      `json:"email_confirmed"`
	Active         bool      `json:"active"`
	ExpiresAt      time.Time `json:"expires_at"` // end of the paid billing period
	CardLast4      string    `json:"card_last4,omitempty"`
	CustomerID     string    `json:"-"` // payment processor customer reference
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (a *Account) Touch() {
	a.UpdatedAt = time.Now()
}

// HasBilling reports whether the account is attached to a payment
// processor customer.
func (a *Account) HasBilling() bool {
	return a.CustomerID != ""
}

// BillingStatus evaluates the account's billing expiration against now.
//
//   - Paid period still running: BillingOK.
//   - Expired less than GracePeriod ago: BillingGrace, with the whole
//     days of grace remaining (truncated, so one hour past expiry reports
//     six days left).
//   - Expired longer ago than GracePeriod: BillingLapsed.
func (a *Account) BillingStatus(now time.Time) BillingStatus {
	elapsed := now.Sub(a.ExpiresAt)

	switch {
	case elapsed <= 0:
		return BillingStatus{State: BillingOK}
	case elapsed <= GracePeriod:
		remaining := GracePeriod - elapsed
		return BillingStatus{
			State:    BillingGrace,
			DaysLeft: int(remaining / (24 * time.Hour)),
		}
	default:
		return BillingStatus{State: BillingLapsed}
	}
}
