package notify

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/misenoti/misenoti/internal/auth/domain"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends plain text mail. It cannot reach phone contacts.
type SMTPNotifier struct {
	from   string
	sender mailSender
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPNotifier{
		from:   from,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (n *SMTPNotifier) SendVerificationCode(ctx context.Context, msg Message) error {
	body := fmt.Sprintf(
		"Your MiseNoti verification code is %s.\n\nIt expires at %s.\n",
		msg.Secret, msg.ExpiresAt.UTC().Format(time.RFC1123),
	)
	return n.send(msg, "Confirm your MiseNoti account", body)
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, msg Message) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nUse this token to reset your MiseNoti password:\n\n%s\n\nIt expires at %s. "+
			"If you did not ask for a reset you can ignore this message.\n",
		msg.Name, msg.Secret, msg.ExpiresAt.UTC().Format(time.RFC1123),
	)
	return n.send(msg, "Reset your MiseNoti password", body)
}

func (n *SMTPNotifier) send(msg Message, subject, body string) error {
	const op = "notify.smtp.send"

	if msg.Channel != domain.ContactEmail {
		return fmt.Errorf("%s: %w: %s", op, ErrUnsupportedChannel, msg.Channel)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
