// Package refreshtokens declares the server-side repository contract for
// the per-user refresh-token set.
package refreshtokens

import (
	"context"
	"time"
)

// Repository defines operations for issuing and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Delete removes the token from the user's set. It reports whether the
	// token was actually a member, so callers can distinguish a rotation
	// from a replay of an already-revoked token.
	Delete(ctx context.Context, userID string, token string) (bool, error)

	// DeleteAllForUser revokes every refresh token the user holds.
	DeleteAllForUser(ctx context.Context, userID string) error
}
