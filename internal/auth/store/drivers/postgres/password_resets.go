package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/store"
)

type passwordResetsRepo struct {
	db dbtx
}

func (r *passwordResetsRepo) UpsertPasswordReset(ctx context.Context, reset domain.PasswordReset) error {
	if reset.CreatedAt.IsZero() {
		reset.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_resets (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
	`, reset.UserID, reset.TokenHash, reset.ExpiresAt, reset.CreatedAt)
	if isUniqueViolation(err) {
		return oops.Code("RESET_UPSERT_FAILED").With("user_id", reset.UserID).Wrap(store.ErrAlreadyExists)
	}
	if err != nil {
		return oops.Code("RESET_UPSERT_FAILED").
			With("operation", "upsert password_reset").
			With("user_id", reset.UserID).
			Wrap(err)
	}
	return nil
}

func (r *passwordResetsRepo) GetActivePasswordReset(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (domain.PasswordReset, error) {
	var reset domain.PasswordReset
	err := r.db.QueryRow(ctx, `
		SELECT user_id, token_hash, expires_at, created_at
		FROM password_resets
		WHERE token_hash = $1 AND expires_at > $2
	`, tokenHash, now).Scan(&reset.UserID, &reset.TokenHash, &reset.ExpiresAt, &reset.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PasswordReset{}, oops.Code("RESET_NOT_FOUND").Wrap(store.ErrNotFound)
	}
	if err != nil {
		return domain.PasswordReset{}, oops.Code("RESET_SCAN_FAILED").Wrap(err)
	}
	reset.ExpiresAt = reset.ExpiresAt.UTC()
	reset.CreatedAt = reset.CreatedAt.UTC()
	return reset, nil
}

func (r *passwordResetsRepo) ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var userID string
	err := r.db.QueryRow(ctx, `
		DELETE FROM password_resets
		WHERE token_hash = $1 AND expires_at > $2
		RETURNING user_id
	`, tokenHash, now).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", oops.Code("RESET_NOT_FOUND").Wrap(store.ErrNotFound)
	}
	if err != nil {
		return "", oops.Code("RESET_CONSUME_FAILED").Wrap(err)
	}
	return userID, nil
}

func (r *passwordResetsRepo) DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM password_resets WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("RESET_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired password_resets").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}
