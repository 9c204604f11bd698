package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/misenoti/misenoti/internal/auth/metrics"
	"github.com/misenoti/misenoti/internal/auth/notify"
	"github.com/misenoti/misenoti/internal/auth/service"
	"github.com/misenoti/misenoti/internal/auth/store/drivers/sqlite"
	"github.com/misenoti/misenoti/pkg/cryptox"
	"github.com/misenoti/misenoti/pkg/httpx"
	"github.com/misenoti/misenoti/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type outbox struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (o *outbox) SendVerificationCode(_ context.Context, msg notify.Message) error {
	return o.add(msg)
}

func (o *outbox) SendPasswordReset(_ context.Context, msg notify.Message) error {
	return o.add(msg)
}

func (o *outbox) add(msg notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) last(t *testing.T, purpose notify.Purpose) notify.Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].Purpose == purpose {
			return o.messages[i]
		}
	}
	require.FailNow(t, "no message sent", "purpose %s", purpose)
	return notify.Message{}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

var errPingFailed = errors.New("connection refused")

type testServer struct {
	router  *Router
	store   *sqlite.Store
	outbox  *outbox
	metrics *metrics.Metrics
}

type serverOption func(*Router)

func withActionLimit(l httpx.RateLimitConfig) serverOption {
	return func(r *Router) { r.ActionLimit = l }
}

func withVerifications(p Pinger) serverOption {
	return func(r *Router) { r.Verifications = p }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	codec, err := jwtx.NewCodec(testSecret)
	require.NoError(t, err)

	box := &outbox{}
	m := metrics.New()

	svc := &service.AuthService{
		Store: s,
		Hasher: cryptox.NewPasswordHasherWithParams("pepper", cryptox.Argon2Params{
			Memory:      64,
			Iterations:  1,
			Parallelism: 1,
			KeyLength:   32,
			SaltLength:  16,
		}),
		Codec:    codec,
		Gate:     &service.VerificationGate{Repo: s.Verifications()},
		Notifier: box,
	}

	r := NewRouter(codec, "test", s, httpx.CORSConfig{}, slog.New(slog.DiscardHandler))
	r.AuthService = svc
	r.Metrics = m
	r.ActionLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	for _, opt := range opts {
		opt(r)
	}
	r.ApplyRoutes()

	return &testServer{router: r, store: s, outbox: box, metrics: m}
}

func (ts *testServer) post(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return ts.postRaw(t, raw)
}

func (ts *testServer) postRaw(t *testing.T, raw []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func registerBody(step any, email, code string) map[string]any {
	body := map[string]any{
		"action":          "register",
		"name":            "Ana",
		"surname":         "Pop",
		"contactType":     "email",
		"email":           email,
		"password":        "secret1",
		"confirmPassword": "secret1",
	}
	if step != nil {
		body["step"] = step
	}
	if code != "" {
		body["verificationCode"] = code
	}
	return body
}

// register completes both steps for email and returns the new user ID.
func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()

	rec := ts.post(t, registerBody("1", email, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	code := ts.outbox.last(t, notify.PurposeVerification).Secret
	rec = ts.post(t, registerBody(2, email, code))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.UserID
}
