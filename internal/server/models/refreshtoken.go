package models

import "time"

// RefreshToken is one member of a user's server-side refresh-token set.
// Only tokens the session service issued and has not since revoked exist
// as rows.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
