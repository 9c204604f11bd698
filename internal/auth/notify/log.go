package notify

import (
	"context"

	"github.com/misenoti/misenoti/pkg/slogx"
)

// LogNotifier writes delivery jobs to the request logger. It prints secrets
// and is meant for local development only.
type LogNotifier struct{}

func (LogNotifier) SendVerificationCode(ctx context.Context, msg Message) error {
	slogx.FromContext(ctx).Info("verification code issued",
		"channel", msg.Channel,
		"to", msg.To,
		"code", msg.Secret,
		"expires_at", msg.ExpiresAt,
	)
	return nil
}

func (LogNotifier) SendPasswordReset(ctx context.Context, msg Message) error {
	slogx.FromContext(ctx).Info("password reset issued",
		"channel", msg.Channel,
		"to", msg.To,
		"token", msg.Secret,
		"expires_at", msg.ExpiresAt,
	)
	return nil
}
