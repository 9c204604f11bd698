// Package redis keeps verification attempts in Redis, where key expiry
// replaces the expired-row sweep.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/store"
)

const keyPrefix = "verification:"

// reserveScript spends one try on an attempt that still exists, has not
// expired and has tries left, and returns the attempt. It returns nil
// otherwise, so a late check cannot resurrect a consumed key.
var reserveScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local attempts = tonumber(redis.call('HGET', KEYS[1], 'attempts'))
local expires = tonumber(redis.call('HGET', KEYS[1], 'expires_at'))
if attempts >= tonumber(ARGV[1]) or expires <= tonumber(ARGV[2]) then
	return false
end
local n = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
local f = redis.call('HMGET', KEYS[1], 'id', 'contact_type', 'contact', 'secret', 'expires_at', 'created_at')
return {n, f[1], f[2], f[3], f[4], f[5], f[6]}
`)

type VerificationRepo struct {
	client *redis.Client
}

var _ store.Verifications = (*VerificationRepo)(nil)

func New(ctx context.Context, addr, pass string, db int) (*VerificationRepo, error) {
	const op = "store.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &VerificationRepo{client: client}, nil
}

func key(contact string) string { return keyPrefix + contact }

// UpsertVerification replaces any attempt for the contact in one MULTI/EXEC
// and lets Redis expire the key at v.ExpiresAt.
func (r *VerificationRepo) UpsertVerification(ctx context.Context, v domain.VerificationAttempt) error {
	const op = "store.redis.UpsertVerification"

	createdAt := v.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	k := key(v.Contact)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, map[string]any{
			"id":           v.ID,
			"contact_type": string(v.ContactType),
			"contact":      v.Contact,
			"secret":       v.Secret,
			"attempts":     0,
			"expires_at":   v.ExpiresAt.Unix(),
			"created_at":   createdAt.Unix(),
		})
		pipe.ExpireAt(ctx, k, v.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *VerificationRepo) GetVerification(ctx context.Context, contact string) (domain.VerificationAttempt, error) {
	const op = "store.redis.GetVerification"

	fields, err := r.client.HGetAll(ctx, key(contact)).Result()
	if err != nil {
		return domain.VerificationAttempt{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(fields) == 0 {
		return domain.VerificationAttempt{}, store.ErrNotFound
	}

	attempts, err1 := strconv.Atoi(fields["attempts"])
	expiresAt, err2 := strconv.ParseInt(fields["expires_at"], 10, 64)
	createdAt, err3 := strconv.ParseInt(fields["created_at"], 10, 64)
	if err := errors.Join(err1, err2, err3); err != nil {
		return domain.VerificationAttempt{}, fmt.Errorf("%s: malformed attempt: %w", op, err)
	}

	return domain.VerificationAttempt{
		ID:          fields["id"],
		ContactType: domain.ContactType(fields["contact_type"]),
		Contact:     fields["contact"],
		Secret:      fields["secret"],
		Attempts:    attempts,
		ExpiresAt:   time.Unix(expiresAt, 0).UTC(),
		CreatedAt:   time.Unix(createdAt, 0).UTC(),
	}, nil
}

func (r *VerificationRepo) ReserveVerificationAttempt(ctx context.Context, contact string, maxAttempts int, now time.Time) (domain.VerificationAttempt, error) {
	const op = "store.redis.ReserveVerificationAttempt"

	vals, err := reserveScript.Run(ctx, r.client, []string{key(contact)}, maxAttempts, now.Unix()).Slice()
	if errors.Is(err, redis.Nil) {
		return domain.VerificationAttempt{}, store.ErrNotFound
	}
	if err != nil {
		return domain.VerificationAttempt{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(vals) != 7 {
		return domain.VerificationAttempt{}, fmt.Errorf("%s: unexpected reply of %d values", op, len(vals))
	}

	attempts, ok := vals[0].(int64)
	if !ok {
		return domain.VerificationAttempt{}, fmt.Errorf("%s: malformed attempt count %v", op, vals[0])
	}
	fields := make([]string, 6)
	for i, v := range vals[1:] {
		fields[i], _ = v.(string)
	}

	expiresAt, err1 := strconv.ParseInt(fields[4], 10, 64)
	createdAt, err2 := strconv.ParseInt(fields[5], 10, 64)
	if err := errors.Join(err1, err2); err != nil {
		return domain.VerificationAttempt{}, fmt.Errorf("%s: malformed attempt: %w", op, err)
	}

	return domain.VerificationAttempt{
		ID:          fields[0],
		ContactType: domain.ContactType(fields[1]),
		Contact:     fields[2],
		Secret:      fields[3],
		Attempts:    int(attempts),
		ExpiresAt:   time.Unix(expiresAt, 0).UTC(),
		CreatedAt:   time.Unix(createdAt, 0).UTC(),
	}, nil
}

func (r *VerificationRepo) DeleteVerification(ctx context.Context, contact string) (bool, error) {
	const op = "store.redis.DeleteVerification"

	n, err := r.client.Del(ctx, key(contact)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// DeleteExpiredVerifications is a no-op: keys expire on their own.
func (r *VerificationRepo) DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (r *VerificationRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *VerificationRepo) Close() error {
	return r.client.Close()
}
