package domain

import "time"

// PasswordReset is the single outstanding reset capability of a user. Only
// the fingerprint of the token handed to the user is stored.
type PasswordReset struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
