package jwtx

import "errors"

// Verifier validates a session token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	// ErrInvalidToken is the only error Verify reports. Malformed, forged and
	// expired tokens are indistinguishable to callers.
	ErrInvalidToken = errors.New("jwtx: invalid session token")

	ErrSecretTooShort = errors.New("jwtx: signing secret too short")
)
