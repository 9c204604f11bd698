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

type verificationsRepo struct {
	db dbtx
}

func (r *verificationsRepo) UpsertVerification(ctx context.Context, v domain.VerificationAttempt) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO verification_attempts (id, contact_type, contact, secret, attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
		ON CONFLICT (contact) DO UPDATE SET
			id = EXCLUDED.id,
			contact_type = EXCLUDED.contact_type,
			secret = EXCLUDED.secret,
			attempts = 0,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
	`, v.ID, string(v.ContactType), v.Contact, v.Secret, v.ExpiresAt, v.CreatedAt)
	if err != nil {
		return oops.Code("VERIFICATION_UPSERT_FAILED").With("contact_type", string(v.ContactType)).Wrap(err)
	}
	return nil
}

func (r *verificationsRepo) GetVerification(ctx context.Context, contact string) (domain.VerificationAttempt, error) {
	var (
		v           domain.VerificationAttempt
		contactType string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, contact_type, contact, secret, attempts, expires_at, created_at
		FROM verification_attempts
		WHERE contact = $1
	`, contact).Scan(&v.ID, &contactType, &v.Contact, &v.Secret, &v.Attempts, &v.ExpiresAt, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.VerificationAttempt{}, oops.Code("VERIFICATION_NOT_FOUND").Wrap(store.ErrNotFound)
	}
	if err != nil {
		return domain.VerificationAttempt{}, oops.Code("VERIFICATION_SCAN_FAILED").Wrap(err)
	}
	v.ContactType = domain.ContactType(contactType)
	v.ExpiresAt = v.ExpiresAt.UTC()
	v.CreatedAt = v.CreatedAt.UTC()
	return v, nil
}

func (r *verificationsRepo) ReserveVerificationAttempt(ctx context.Context, contact string, maxAttempts int, now time.Time) (domain.VerificationAttempt, error) {
	var (
		v           domain.VerificationAttempt
		contactType string
	)
	err := r.db.QueryRow(ctx, `
		UPDATE verification_attempts SET attempts = attempts + 1
		WHERE contact = $1 AND attempts < $2 AND expires_at > $3
		RETURNING id, contact_type, contact, secret, attempts, expires_at, created_at
	`, contact, maxAttempts, now).Scan(&v.ID, &contactType, &v.Contact, &v.Secret, &v.Attempts, &v.ExpiresAt, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.VerificationAttempt{}, oops.Code("VERIFICATION_NOT_AVAILABLE").Wrap(store.ErrNotFound)
	}
	if err != nil {
		return domain.VerificationAttempt{}, oops.Code("VERIFICATION_RESERVE_FAILED").Wrap(err)
	}
	v.ContactType = domain.ContactType(contactType)
	v.ExpiresAt = v.ExpiresAt.UTC()
	v.CreatedAt = v.CreatedAt.UTC()
	return v, nil
}

func (r *verificationsRepo) DeleteVerification(ctx context.Context, contact string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM verification_attempts WHERE contact = $1`, contact)
	if err != nil {
		return false, oops.Code("VERIFICATION_DELETE_FAILED").Wrap(err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *verificationsRepo) DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM verification_attempts WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("VERIFICATION_DELETE_EXPIRED_FAILED").Wrap(err)
	}
	return result.RowsAffected(), nil
}
