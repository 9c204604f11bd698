package sqlite

import (
	"context"
	"time"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/store/drivers/sqlite/gen"
)

type passwordResetsRepo struct {
	q *gen.Queries
}

func (r *passwordResetsRepo) UpsertPasswordReset(ctx context.Context, reset domain.PasswordReset) error {
	createdAt := reset.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	err := r.q.UpsertPasswordReset(ctx, gen.UpsertPasswordResetParams{
		UserID:    reset.UserID,
		TokenHash: reset.TokenHash,
		ExpiresAt: reset.ExpiresAt.Unix(),
		CreatedAt: createdAt,
	})
	return mapConstraint(err)
}

func (r *passwordResetsRepo) GetActivePasswordReset(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (domain.PasswordReset, error) {
	row, err := r.q.GetActivePasswordReset(ctx, gen.GetActivePasswordResetParams{
		TokenHash: tokenHash,
		ExpiresAt: now.Unix(),
	})
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	return mapPasswordReset(row), nil
}

func (r *passwordResetsRepo) ConsumePasswordReset(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (string, error) {
	userID, err := r.q.ConsumePasswordReset(ctx, gen.ConsumePasswordResetParams{
		TokenHash: tokenHash,
		ExpiresAt: now.Unix(),
	})
	if err != nil {
		return "", mapNotFound(err)
	}
	return userID, nil
}

func (r *passwordResetsRepo) DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredPasswordResets(ctx, now.Unix())
}
