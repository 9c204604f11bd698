package store

import (
	"context"
	"errors"
	"time"

	"github.com/misenoti/misenoti/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are reached through methods so a Tx can
// hand out the same repos bound to its transaction, and nested transactions
// stay impossible.
type Store interface {
	Users() Users
	PasswordResets() PasswordResets
	Verifications() Verifications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn rolls
	// the transaction back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// ContactField names a unique contact column of the users table.
type ContactField string

const (
	FieldEmail ContactField = "email"
	FieldPhone ContactField = "phone"
)

type Users interface {
	// GetUserByContact matches identifier exactly against email or phone.
	GetUserByContact(ctx context.Context, identifier string) (domain.User, error)

	// ContactExists is the pre-registration collision check. It is advisory:
	// CreateUser is the authoritative guard.
	ContactExists(ctx context.Context, field ContactField, value string) (bool, error)

	// CreateUser inserts a new user (id is provided by the caller as a ULID).
	// A unique violation on email or phone yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdatePasswordHash replaces the hash and bumps updated_at. ErrNotFound
	// when no row was changed.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type PasswordResets interface {
	// UpsertPasswordReset stores r, replacing any outstanding reset of the
	// same user in a single statement.
	UpsertPasswordReset(ctx context.Context, r domain.PasswordReset) error

	// GetActivePasswordReset returns the reset with the given token hash that
	// has not expired at now.
	GetActivePasswordReset(ctx context.Context, tokenHash string, now time.Time) (domain.PasswordReset, error)

	// ConsumePasswordReset deletes the active reset with the given token hash
	// and returns its user id. ErrNotFound when nothing was deleted.
	ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error)

	// DeleteExpiredPasswordResets is housekeeping.
	DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error)
}

type Verifications interface {
	// UpsertVerification stores v, replacing any previous attempt for the
	// same contact.
	UpsertVerification(ctx context.Context, v domain.VerificationAttempt) error

	// GetVerification returns the attempt for contact, expired or not.
	GetVerification(ctx context.Context, contact string) (domain.VerificationAttempt, error)

	// ReserveVerificationAttempt spends one try on the attempt for contact in
	// a single atomic step and returns the attempt with the new count. It
	// returns ErrNotFound when the attempt is missing, expired at now, or
	// already has maxAttempts tries recorded.
	ReserveVerificationAttempt(ctx context.Context, contact string, maxAttempts int, now time.Time) (domain.VerificationAttempt, error)

	// DeleteVerification removes the attempt for contact and reports whether
	// a row was removed.
	DeleteVerification(ctx context.Context, contact string) (bool, error)

	// DeleteExpiredVerifications is housekeeping.
	DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error)
}
