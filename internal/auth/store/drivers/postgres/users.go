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

const userColumns = `id, name, email, phone, password_hash, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByContact(ctx context.Context, identifier string) (domain.User, error) {
	if identifier == "" {
		return domain.User{}, oops.Code("USER_NOT_FOUND").Wrap(store.ErrNotFound)
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR phone = $1 LIMIT 1`, identifier)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, oops.Code("USER_NOT_FOUND").Wrap(store.ErrNotFound)
	}
	return u, err
}

func (r *usersRepo) ContactExists(ctx context.Context, field store.ContactField, value string) (bool, error) {
	var query string
	switch field {
	case store.FieldEmail:
		query = `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	case store.FieldPhone:
		query = `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`
	default:
		return false, oops.Code("INVALID_CONTACT_FIELD").Errorf("unknown contact field %q", field)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").With("field", string(field)).Wrap(err)
	}
	return exists, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Name, nullable(u.Email), nullable(u.Phone), u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.User{}, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(store.ErrAlreadyExists)
	}
	if err != nil {
		return domain.User{}, oops.Code("USER_CREATE_FAILED").With("operation", "insert user").Wrap(err)
	}
	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3
	`, newHash, time.Now().UTC(), userID)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("user_id", userID).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("user_id", userID).Wrap(store.ErrNotFound)
	}
	return nil
}

// scanUser leaves pgx.ErrNoRows unwrapped for callers to map.
func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u     domain.User
		email *string
		phone *string
	)
	err := row.Scan(&u.ID, &u.Name, &email, &phone, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	if err != nil {
		return domain.User{}, oops.Code("USER_SCAN_FAILED").Wrap(err)
	}
	u.Email = deref(email)
	u.Phone = deref(phone)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}
