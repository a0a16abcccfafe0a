// Package mailer delivers the out-of-band proof messages (verification links
// and password-reset secrets) to users' email addresses.
package mailer

import "context"

// Sender is the delivery channel the services use. Implementations must not
// block on user-facing paths for longer than one SMTP round trip; callers
// treat delivery failures as non-fatal.
type Sender interface {
	// SendVerificationEmail sends an address-validation link containing token.
	SendVerificationEmail(ctx context.Context, to string, name string, token string) error

	// SendPasswordResetEmail sends the one-time reset secret. The secret is
	// only ever transmitted here; the store keeps just its digest.
	SendPasswordResetEmail(ctx context.Context, to string, name string, secret string) error
}
