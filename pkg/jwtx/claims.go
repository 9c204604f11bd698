package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token issued at login.
const DefaultSessionTTL = 24 * time.Hour

// Claims is the payload of a session token. Only exp and iat are used from
// the registered set, so the encoded payload is
// {"user_id":...,"email":...,"exp":...,"iat":...}.
type Claims struct {
	UserID string `json:"user_id"`

	// Email is empty for accounts registered with a phone number.
	Email string `json:"email"`

	jwt.RegisteredClaims
}

// NewSessionClaims builds the claims for a freshly authenticated user.
// Expiry and issue time are stamped by Codec.Issue.
func NewSessionClaims(userID, email string) Claims {
	return Claims{
		UserID: userID,
		Email:  email,
	}
}

// ExpiresAtTime returns exp as a time.Time, or the zero time when absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
