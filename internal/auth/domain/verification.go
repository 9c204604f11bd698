package domain

import "time"

// VerificationAttempt binds a one-time code to the contact it was sent to
// during registration. There is at most one attempt per contact.
type VerificationAttempt struct {
	ID          string
	ContactType ContactType
	Contact     string
	Secret      string // base32 HOTP secret the code is derived from
	Attempts    int    // tries spent so far
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired reports whether the attempt has lapsed at now.
func (v VerificationAttempt) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
