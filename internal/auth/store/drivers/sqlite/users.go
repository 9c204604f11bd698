package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/store"
	"github.com/misenoti/misenoti/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByContact(ctx context.Context, identifier string) (domain.User, error) {
	if identifier == "" {
		return domain.User{}, store.ErrNotFound
	}
	row, err := r.q.GetUserByContact(ctx, mapStringNull(identifier))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) ContactExists(ctx context.Context, field store.ContactField, value string) (bool, error) {
	var (
		n   int64
		err error
	)
	switch field {
	case store.FieldEmail:
		n, err = r.q.EmailExists(ctx, mapStringNull(value))
	case store.FieldPhone:
		n, err = r.q.PhoneExists(ctx, mapStringNull(value))
	default:
		return false, fmt.Errorf("sqlite: unknown contact field %q", field)
	}
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt

	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:           u.ID,
		Name:         u.Name,
		Email:        mapStringNull(u.Email),
		Phone:        mapStringNull(u.Phone),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	n, err := r.q.UpdateUserPasswordHash(ctx, gen.UpdateUserPasswordHashParams{
		PasswordHash: newHash,
		UpdatedAt:    time.Now().UTC(),
		ID:           userID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
