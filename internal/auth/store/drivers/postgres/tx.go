package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/misenoti/misenoti/internal/auth/store"
)

// errNestedTx is returned when a transaction is started inside another.
var errNestedTx = errors.New("postgres: nested transactions are not supported")

type txStore struct {
	ctx  context.Context
	tx   pgx.Tx
	done bool
}

func (t *txStore) Commit() error {
	t.done = true
	if err := t.tx.Commit(t.ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// Rollback is a no-op once the transaction has been committed or rolled back.
func (t *txStore) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(t.ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return oops.Code("TX_ROLLBACK_FAILED").Wrap(err)
	}
	return nil
}

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}

func (t *txStore) Users() store.Users                   { return &usersRepo{db: t.tx} }
func (t *txStore) PasswordResets() store.PasswordResets { return &passwordResetsRepo{db: t.tx} }
func (t *txStore) Verifications() store.Verifications   { return &verificationsRepo{db: t.tx} }
