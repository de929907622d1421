package mail

import (
	"fmt"
	"net/url"
)

// Builder assembles the app's transactional messages. Links are built from
// the server's external URL so emailed links work outside the LAN.
type Builder struct {
	externalURL string
	appName     string
}

func NewBuilder(externalURL, appName string) *Builder {
	return &Builder{externalURL: externalURL, appName: appName}
}

func (b *Builder) link(path, token string) string {
	return fmt.Sprintf("%s%s?key=%s", b.externalURL, path, url.QueryEscape(token))
}

// Activation is sent after signup; the link confirms the address and unlocks
// the account.
func (b *Builder) Activation(to, token string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Activate your %s account", b.appName),
		Body: fmt.Sprintf(
			"Welcome to %s!\n\nConfirm your email address to activate your account:\n\n%s\n\nThis link expires in 24 hours. If you didn't sign up, you can ignore this email.\n",
			b.appName, b.link("/activate", token),
		),
	}
}

// Recovery is sent when someone asks for a password reset.
func (b *Builder) Recovery(to, token string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Reset your %s password", b.appName),
		Body: fmt.Sprintf(
			"Someone asked to reset the password for this address.\n\nSet a new password here:\n\n%s\n\nThis link expires in 24 hours. If that wasn't you, ignore this email and your password stays as it is.\n",
			b.link("/reset", token),
		),
	}
}

// EmailChange is sent to the NEW address; the link confirms the swap.
func (b *Builder) EmailChange(to, token string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Confirm your new %s email address", b.appName),
		Body: fmt.Sprintf(
			"Confirm this address to finish updating your %s account email:\n\n%s\n\nThis link expires in 24 hours. If you didn't ask for this change, you can ignore this email.\n",
			b.appName, b.link("/confirm-email", token),
		),
	}
}

// PaymentReceipt is sent after a successful charge.
func (b *Builder) PaymentReceipt(to string, periodEnd string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s payment received", b.appName),
		Body: fmt.Sprintf(
			"Thanks! Your payment went through and your subscription runs until %s.\n",
			periodEnd,
		),
	}
}

// PaymentProblem is sent when a charge fails; the account keeps working
// through the grace period.
func (b *Builder) PaymentProblem(to string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Problem with your %s payment", b.appName),
		Body: fmt.Sprintf(
			"We couldn't process your latest payment. Please update your card at %s/billing.\n\nYour account keeps working for 7 days while we retry.\n",
			b.externalURL,
		),
	}
}
