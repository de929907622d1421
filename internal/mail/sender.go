// Package mail builds and delivers the transactional emails the app sends:
// account activation, password recovery, email change confirmation, and
// billing notices.
package mail

import "context"

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message. Implementations must not retry internally;
// callers decide whether a failure is worth surfacing to the user.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
