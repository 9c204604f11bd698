package sqlite

import (
	"context"
	"time"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/store/drivers/sqlite/gen"
)

type verificationsRepo struct {
	q *gen.Queries
}

func (r *verificationsRepo) UpsertVerification(ctx context.Context, v domain.VerificationAttempt) error {
	createdAt := v.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return r.q.UpsertVerificationAttempt(ctx, gen.UpsertVerificationAttemptParams{
		ID:          v.ID,
		ContactType: string(v.ContactType),
		Contact:     v.Contact,
		Secret:      v.Secret,
		ExpiresAt:   v.ExpiresAt.Unix(),
		CreatedAt:   createdAt,
	})
}

func (r *verificationsRepo) GetVerification(ctx context.Context, contact string) (domain.VerificationAttempt, error) {
	row, err := r.q.GetVerificationAttempt(ctx, contact)
	if err != nil {
		return domain.VerificationAttempt{}, mapNotFound(err)
	}
	return mapVerification(row), nil
}

func (r *verificationsRepo) ReserveVerificationAttempt(ctx context.Context, contact string, maxAttempts int, now time.Time) (domain.VerificationAttempt, error) {
	row, err := r.q.ReserveVerificationAttempt(ctx, gen.ReserveVerificationAttemptParams{
		Contact:   contact,
		Attempts:  int64(maxAttempts),
		ExpiresAt: now.Unix(),
	})
	if err != nil {
		return domain.VerificationAttempt{}, mapNotFound(err)
	}
	return mapVerification(row), nil
}

func (r *verificationsRepo) DeleteVerification(ctx context.Context, contact string) (bool, error) {
	n, err := r.q.DeleteVerificationAttempt(ctx, contact)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *verificationsRepo) DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredVerificationAttempts(ctx, now.Unix())
}
