package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) (*VerificationGate, *testClock) {
	t.Helper()
	env := newTestEnv(t)
	return env.svc.Gate, env.clock
}

func TestVerificationGateSingleUse(t *testing.T) {
	ctx := context.Background()
	gate, clock := newTestGate(t)

	code, expiresAt, err := gate.Issue(ctx, domain.ContactEmail, "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.WithinDuration(t, clock.Now().Add(DefaultVerificationTTL), expiresAt, time.Second)

	ok, err := gate.Check(ctx, domain.ContactPhone, "ana@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok, "contact type must match the issued one")

	ok, err = gate.Check(ctx, domain.ContactEmail, "ana@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.Check(ctx, domain.ContactEmail, "ana@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerificationGateReissueReplaces(t *testing.T) {
	ctx := context.Background()
	gate, _ := newTestGate(t)

	first, _, err := gate.Issue(ctx, domain.ContactEmail, "ana@example.com")
	require.NoError(t, err)
	second, _, err := gate.Issue(ctx, domain.ContactEmail, "ana@example.com")
	require.NoError(t, err)

	if first != second {
		ok, err := gate.Check(ctx, domain.ContactEmail, "ana@example.com", first)
		require.NoError(t, err)
		assert.False(t, ok, "the earlier code is no longer live")
	}

	ok, err := gate.Check(ctx, domain.ContactEmail, "ana@example.com", second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerificationGateExpiry(t *testing.T) {
	ctx := context.Background()
	gate, clock := newTestGate(t)

	code, _, err := gate.Issue(ctx, domain.ContactPhone, "0712345678")
	require.NoError(t, err)

	clock.Advance(DefaultVerificationTTL)

	ok, err := gate.Check(ctx, domain.ContactPhone, "0712345678", code)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = gate.Repo.GetVerification(ctx, "0712345678")
	require.ErrorIs(t, err, store.ErrNotFound, "expired attempts are dropped on check")
}

func TestVerificationGateAttemptLimit(t *testing.T) {
	ctx := context.Background()
	gate, _ := newTestGate(t)
	gate.MaxAttempts = 3

	code, _, err := gate.Issue(ctx, domain.ContactEmail, "ana@example.com")
	require.NoError(t, err)

	for i := range 3 {
		ok, err := gate.Check(ctx, domain.ContactEmail, "ana@example.com", otherCode(code))
		require.NoError(t, err)
		assert.False(t, ok, "guess %d", i)
	}

	attempt, err := gate.Repo.GetVerification(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, attempt.Attempts)

	ok, err := gate.Check(ctx, domain.ContactEmail, "ana@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok, "the right code is refused once attempts are exhausted")
}

// gatedRepo holds every reservation until all callers have arrived and
// counts the reservations that were granted.
type gatedRepo struct {
	store.Verifications
	arrived  sync.WaitGroup
	reserved atomic.Int32
}

func (r *gatedRepo) ReserveVerificationAttempt(ctx context.Context, contact string, maxAttempts int, now time.Time) (domain.VerificationAttempt, error) {
	r.arrived.Done()
	r.arrived.Wait()

	attempt, err := r.Verifications.ReserveVerificationAttempt(ctx, contact, maxAttempts, now)
	if err == nil {
		r.reserved.Add(1)
	}
	return attempt, err
}

func TestVerificationGateConcurrentGuessesRespectLimit(t *testing.T) {
	ctx := context.Background()
	gate, _ := newTestGate(t)
	gate.MaxAttempts = 5

	code, _, err := gate.Issue(ctx, domain.ContactEmail, "ana@example.com")
	require.NoError(t, err)

	const guesses = 20
	repo := &gatedRepo{Verifications: gate.Repo}
	repo.arrived.Add(guesses)
	gate.Repo = repo

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for range guesses {
		wg.Go(func() {
			ok, err := gate.Check(ctx, domain.ContactEmail, "ana@example.com", otherCode(code))
			assert.NoError(t, err)
			if ok {
				accepted.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Zero(t, accepted.Load())
	assert.EqualValues(t, 5, repo.reserved.Load(), "only MaxAttempts guesses may be compared")

	attempt, err := repo.Verifications.GetVerification(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 5, attempt.Attempts)

	repo.arrived.Add(1)
	ok, err := gate.Check(ctx, domain.ContactEmail, "ana@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok, "the right code is refused once attempts are exhausted")
}

func TestVerificationGateMalformedCodeCountsAsMiss(t *testing.T) {
	ctx := context.Background()
	gate, _ := newTestGate(t)

	_, _, err := gate.Issue(ctx, domain.ContactEmail, "ana@example.com")
	require.NoError(t, err)

	ok, err := gate.Check(ctx, domain.ContactEmail, "ana@example.com", "12")
	require.NoError(t, err)
	assert.False(t, ok)

	attempt, err := gate.Repo.GetVerification(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.Attempts)
}

func TestVerificationGateDefaults(t *testing.T) {
	g := &VerificationGate{}
	assert.Equal(t, DefaultVerificationTTL, g.ttl())
	assert.Equal(t, DefaultVerificationMaxAttempts, g.maxAttempts())
	assert.WithinDuration(t, time.Now(), g.now(), time.Second)
}
