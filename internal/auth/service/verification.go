package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/store"
	"github.com/misenoti/misenoti/pkg/cryptox"
	"github.com/misenoti/misenoti/pkg/idx"
	"github.com/misenoti/misenoti/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	DefaultVerificationTTL         = 10 * time.Minute
	DefaultVerificationMaxAttempts = 5
)

var hotpOpts = hotp.ValidateOpts{
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// VerificationGate issues and checks the one-time codes that prove control
// of a contact during registration. Each code is bound to one contact value,
// expires after TTL, survives at most MaxAttempts wrong guesses and can be
// redeemed once.
type VerificationGate struct {
	Repo        store.Verifications
	TTL         time.Duration
	MaxAttempts int
	Now         func() time.Time
}

func (g *VerificationGate) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}

func (g *VerificationGate) ttl() time.Duration {
	if g.TTL > 0 {
		return g.TTL
	}
	return DefaultVerificationTTL
}

func (g *VerificationGate) maxAttempts() int {
	if g.MaxAttempts > 0 {
		return g.MaxAttempts
	}
	return DefaultVerificationMaxAttempts
}

// Issue derives a fresh code for contact and replaces any earlier one.
func (g *VerificationGate) Issue(ctx context.Context, contactType domain.ContactType, contact string) (string, time.Time, error) {
	secret, err := cryptox.GenerateOTPSecret()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate verification secret: %w", err)
	}

	code, err := hotp.GenerateCodeCustom(secret, 0, hotpOpts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to derive verification code: %w", err)
	}

	now := g.now()
	attempt := domain.VerificationAttempt{
		ID:          idx.NewAt(now).String(),
		ContactType: contactType,
		Contact:     contact,
		Secret:      secret,
		ExpiresAt:   now.Add(g.ttl()),
		CreatedAt:   now,
	}
	if err := g.Repo.UpsertVerification(ctx, attempt); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store verification attempt: %w", err)
	}

	return code, attempt.ExpiresAt, nil
}

// Check reports whether code is the live code for contact and consumes it
// when it is. Each call spends one try before the code is compared, so
// concurrent guesses cannot exceed MaxAttempts. Only store failures are
// returned as errors.
func (g *VerificationGate) Check(ctx context.Context, contactType domain.ContactType, contact, code string) (bool, error) {
	now := g.now()

	attempt, err := g.Repo.ReserveVerificationAttempt(ctx, contact, g.maxAttempts(), now)
	if errors.Is(err, store.ErrNotFound) {
		g.dropUnusable(ctx, contact, now)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to reserve verification attempt: %w", err)
	}

	if attempt.ContactType != contactType {
		return false, nil
	}

	// ValidateCustom errors on a code of the wrong length; that is a miss.
	if ok, _ := hotp.ValidateCustom(code, 0, attempt.Secret, hotpOpts); !ok {
		slogx.FromContext(ctx).Debug("verification code mismatch", "attempts", attempt.Attempts)
		return false, nil
	}

	deleted, err := g.Repo.DeleteVerification(ctx, contact)
	if err != nil {
		return false, fmt.Errorf("failed to consume verification attempt: %w", err)
	}
	// Lost a race against a concurrent check of the same code.
	return deleted, nil
}

// Revoke discards the live code for contact, if any.
func (g *VerificationGate) Revoke(ctx context.Context, contact string) error {
	if _, err := g.Repo.DeleteVerification(ctx, contact); err != nil {
		return fmt.Errorf("failed to revoke verification attempt: %w", err)
	}
	return nil
}

// dropUnusable logs why no try could be reserved and removes an expired
// attempt early. Failures here do not affect the result of Check.
func (g *VerificationGate) dropUnusable(ctx context.Context, contact string, now time.Time) {
	log := slogx.FromContext(ctx)

	attempt, err := g.Repo.GetVerification(ctx, contact)
	if err != nil {
		return
	}

	switch {
	case attempt.Expired(now):
		if _, err := g.Repo.DeleteVerification(ctx, contact); err != nil {
			log.Warn("failed to drop expired verification attempt", "error", err)
		}
	case attempt.Attempts >= g.maxAttempts():
		log.Warn("verification attempts exhausted", "contact_type", attempt.ContactType)
	}
}
