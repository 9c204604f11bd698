// Package notify delivers verification codes and reset tokens to users.
// The auth service never returns either secret in a response; a Notifier is
// the only place they leave the process.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/misenoti/misenoti/internal/auth/domain"
)

// ErrUnsupportedChannel is returned when a notifier cannot reach the
// message's contact channel.
var ErrUnsupportedChannel = errors.New("notify: unsupported channel")

type Purpose string

const (
	PurposeVerification  Purpose = "verification"
	PurposePasswordReset Purpose = "password_reset"
)

// Message is a single delivery job.
type Message struct {
	Purpose   Purpose            `json:"purpose"`
	Channel   domain.ContactType `json:"channel"`
	To        string             `json:"to"`
	Name      string             `json:"name,omitempty"`
	Secret    string             `json:"secret"` // verification code or reset token
	ExpiresAt time.Time          `json:"expires_at"`
}

type Notifier interface {
	SendVerificationCode(ctx context.Context, msg Message) error
	SendPasswordReset(ctx context.Context, msg Message) error
}
