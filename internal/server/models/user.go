package models

import "time"

// User is the durable identity record. Instances are value objects: the
// repositories return a fresh copy on every read and the services compute a
// new value before calling Save, so no state is shared through aliasing.
//
// The token pairs (VerificationToken/VerificationExpires and
// PasswordResetDigest/PasswordResetExpires) are either both nil or both set.
// PasswordResetDigest holds a one-way digest of the reset secret, never the
// secret itself.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	Role          Role
	EmailVerified bool

	VerificationToken   *string
	VerificationExpires *time.Time

	PasswordResetDigest  *string
	PasswordResetExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
