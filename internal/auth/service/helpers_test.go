package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/misenoti/misenoti/internal/auth/notify"
	"github.com/misenoti/misenoti/internal/auth/store/drivers/sqlite"
	"github.com/misenoti/misenoti/pkg/cryptox"
	"github.com/misenoti/misenoti/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier keeps every message so tests can read the secrets a
// real notifier would deliver.
type recordingNotifier struct {
	mu     sync.Mutex
	codes  []notify.Message
	resets []notify.Message
	err    error
}

func (n *recordingNotifier) SendVerificationCode(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.codes = append(n.codes, msg)
	return nil
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.resets = append(n.resets, msg)
	return nil
}

func (n *recordingNotifier) lastCode(t *testing.T) notify.Message {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.codes, "no verification code was sent")
	return n.codes[len(n.codes)-1]
}

func (n *recordingNotifier) lastReset(t *testing.T) notify.Message {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.resets, "no password reset was sent")
	return n.resets[len(n.resets)-1]
}

type testEnv struct {
	svc      *AuthService
	store    *sqlite.Store
	notifier *recordingNotifier
	clock    *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	codec, err := jwtx.NewCodec(testSecret, jwtx.WithClock(clock.Now))
	require.NoError(t, err)

	notifier := &recordingNotifier{}

	svc := &AuthService{
		Store: s,
		Hasher: cryptox.NewPasswordHasherWithParams("pepper", cryptox.Argon2Params{
			Memory:      64,
			Iterations:  1,
			Parallelism: 1,
			KeyLength:   32,
			SaltLength:  16,
		}),
		Codec:    codec,
		Gate:     &VerificationGate{Repo: s.Verifications(), Now: clock.Now},
		Notifier: notifier,
		Now:      clock.Now,
	}

	return &testEnv{svc: svc, store: s, notifier: notifier, clock: clock}
}

func emailRegistration(email string) RegistrationInput {
	return RegistrationInput{
		Name:            "Ana",
		Surname:         "Pop",
		ContactType:     "email",
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

// register runs both steps with the delivered code.
func (e *testEnv) register(t *testing.T, in RegistrationInput) RegistrationInput {
	t.Helper()
	ctx := context.Background()

	_, err := e.svc.RegisterStart(ctx, in)
	require.NoError(t, err)

	in.VerificationCode = e.notifier.lastCode(t).Secret
	_, err = e.svc.RegisterComplete(ctx, in)
	require.NoError(t, err)
	return in
}

// otherCode returns a six digit code different from code.
func otherCode(code string) string {
	last := code[len(code)-1]
	return code[:len(code)-1] + string(rune('0'+(last-'0'+1)%10))
}

var errDelivery = errors.New("delivery down")
