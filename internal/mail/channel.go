// Package mail abstracts the out-of-band delivery channel for password reset
// tickets. The plaintext ticket must never be written to a log or a response
// body outside the explicit development shortcut wired in config.
package mail

import "context"

// Channel delivers a password reset ticket to a user.
type Channel interface {
	SendPasswordReset(ctx context.Context, toEmail, username, ticket string) error
}
