package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/misenoti/misenoti/internal/auth/metrics"
	"github.com/misenoti/misenoti/internal/auth/notify"
	"github.com/misenoti/misenoti/internal/auth/service"
	"github.com/misenoti/misenoti/pkg/authsdk"
	"github.com/misenoti/misenoti/pkg/httpx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestActionRejectsNonPost(t *testing.T) {
	ts := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/auth", nil)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		require.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
		res := decode[authsdk.Response](t, rec)
		require.False(t, res.Success)
		require.Equal(t, "method not allowed", res.Message)
	}
}

func TestActionRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	for _, raw := range []string{``, `{`, `not json`, `{"action":"login"} {"action":"login"}`, `["login"]`} {
		rec := ts.postRaw(t, []byte(raw))
		require.Equal(t, http.StatusBadRequest, rec.Code, raw)
		res := decode[authsdk.Response](t, rec)
		require.False(t, res.Success)
		require.Equal(t, authsdk.ErrInvalidBody.Message, res.Message)
	}
}

func TestActionRejectsOversizedBody(t *testing.T) {
	ts := newTestServer(t)

	raw := fmt.Appendf(nil, `{"action":"login","password":%q}`, strings.Repeat("x", httpx.MaxBodyBytes))
	rec := ts.postRaw(t, raw)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestActionRejectsUnknownAction(t *testing.T) {
	ts := newTestServer(t)

	for _, action := range []string{"", "health_check", "LOGIN", "delete_account"} {
		rec := ts.post(t, map[string]any{"action": action})
		require.Equal(t, http.StatusBadRequest, rec.Code, action)
		res := decode[authsdk.Response](t, rec)
		require.False(t, res.Success)
		require.Equal(t, authsdk.ErrInvalidAction.Message, res.Message)
	}

	require.Equal(t, float64(4),
		testutil.ToFloat64(ts.metrics.ActionsTotal.WithLabelValues("invalid", metrics.OutcomeRejected)))
}

func TestRegisterLoginSessionFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.post(t, registerBody(nil, "Ana@Example.com", ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	start := decode[authsdk.RegisterStartResponse](t, rec)
	require.True(t, start.Success)
	require.Equal(t, "email", start.ContactType)
	require.Equal(t, "ana@example.com", start.Contact)
	require.NotContains(t, rec.Body.String(), ts.outbox.last(t, notify.PurposeVerification).Secret)

	code := ts.outbox.last(t, notify.PurposeVerification).Secret
	rec = ts.post(t, registerBody(2, "ana@example.com", code))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[authsdk.RegisterCompleteResponse](t, rec)
	require.True(t, created.Success)
	require.NotEmpty(t, created.UserID)
	require.Equal(t, created.UserID, created.User.ID)
	require.Equal(t, "Ana Pop", created.User.Name)
	require.NotNil(t, created.User.Email)
	require.Equal(t, "ana@example.com", *created.User.Email)
	require.Nil(t, created.User.Phone)
	require.NotContains(t, rec.Body.String(), "password")

	rec = ts.post(t, map[string]any{"action": "login", "emailOrPhone": "ANA@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[authsdk.LoginResponse](t, rec)
	require.True(t, login.Success)
	require.NotEmpty(t, login.Token)
	require.Equal(t, created.UserID, login.User.ID)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = ts.get(t, "/v1/session", login.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := decode[authsdk.SessionResponse](t, rec)
	require.True(t, session.Success)
	require.Equal(t, created.UserID, session.UserID)
	require.Equal(t, "ana@example.com", session.Email)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)

	require.Equal(t, float64(1),
		testutil.ToFloat64(ts.metrics.ActionsTotal.WithLabelValues("login", metrics.OutcomeSuccess)))
	require.Equal(t, float64(2),
		testutil.ToFloat64(ts.metrics.ActionsTotal.WithLabelValues("register", metrics.OutcomeSuccess)))
}

func TestRegisterLegacyNameFields(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{
		"action":          "register",
		"step":            "1",
		"nume":            "Ion",
		"prenume":         "Popescu",
		"contactType":     "phone",
		"phone":           "0712345678",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}
	rec := ts.post(t, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body["step"] = "2"
	body["verificationCode"] = ts.outbox.last(t, notify.PurposeVerification).Secret
	rec = ts.post(t, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[authsdk.RegisterCompleteResponse](t, rec)
	require.Equal(t, "Ion Popescu", created.User.Name)
	require.Nil(t, created.User.Email)
	require.NotNil(t, created.User.Phone)
	require.Equal(t, "0712345678", *created.User.Phone)
}

func TestRegisterRejectsUnknownStep(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.post(t, registerBody("3", "ana@example.com", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid registration step", decode[authsdk.Response](t, rec).Message)
}

func TestRegisterErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "taken@example.com")

	t.Run("password mismatch", func(t *testing.T) {
		body := registerBody("1", "new@example.com", "")
		body["confirmPassword"] = "secret2"
		rec := ts.post(t, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, service.ErrPasswordMismatch.Message, decode[authsdk.Response](t, rec).Message)
	})

	t.Run("contact taken", func(t *testing.T) {
		rec := ts.post(t, registerBody("1", "taken@example.com", ""))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "this email is already registered", decode[authsdk.Response](t, rec).Message)
	})

	t.Run("wrong code", func(t *testing.T) {
		rec := ts.post(t, registerBody("1", "new@example.com", ""))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = ts.post(t, registerBody("2", "new@example.com", "000000x"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, service.ErrInvalidCode.Error(), decode[authsdk.Response](t, rec).Message)
	})

	t.Run("delivery failure is a server error", func(t *testing.T) {
		ts.outbox.err = errors.New("smtp down")
		defer func() { ts.outbox.err = nil }()

		rec := ts.post(t, registerBody("1", "other@example.com", ""))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		res := decode[authsdk.Response](t, rec)
		require.Equal(t, authsdk.ErrServerError.Message, res.Message)
		require.NotContains(t, res.Message, "smtp")
	})

	t.Run("channel the notifier cannot reach", func(t *testing.T) {
		ts.outbox.err = fmt.Errorf("smtp: %w: phone", notify.ErrUnsupportedChannel)
		defer func() { ts.outbox.err = nil }()

		body := registerBody("1", "", "")
		body["contactType"] = "phone"
		body["phone"] = "0712345678"
		rec := ts.post(t, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "phone registration is not available", decode[authsdk.Response](t, rec).Message)
	})
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "ana@example.com")

	wrongPassword := ts.post(t, map[string]any{"action": "login", "emailOrPhone": "ana@example.com", "password": "nope123"})
	unknownUser := ts.post(t, map[string]any{"action": "login", "emailOrPhone": "ghost@example.com", "password": "nope123"})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())

	rec := ts.post(t, map[string]any{"action": "login", "emailOrPhone": "ana@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotAndResetPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "ana@example.com")

	known := ts.post(t, map[string]any{"action": "forgot_password", "emailOrPhone": "ana@example.com"})
	unknown := ts.post(t, map[string]any{"action": "forgot_password", "emailOrPhone": "ghost@example.com"})
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, known.Code, unknown.Code)
	require.Equal(t, known.Body.String(), unknown.Body.String())

	token := ts.outbox.last(t, notify.PurposePasswordReset).Secret
	require.NotContains(t, known.Body.String(), token)

	rec := ts.post(t, map[string]any{
		"action":          "reset_password",
		"token":           token,
		"newPassword":     "newsecret",
		"confirmPassword": "different",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.post(t, map[string]any{
		"action":          "reset_password",
		"token":           token,
		"newPassword":     "newsecret",
		"confirmPassword": "newsecret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, decode[authsdk.Response](t, rec).Success)

	rec = ts.post(t, map[string]any{
		"action":          "reset_password",
		"token":           token,
		"newPassword":     "another1",
		"confirmPassword": "another1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, service.ErrInvalidOrExpiredToken.Error(), decode[authsdk.Response](t, rec).Message)

	rec = ts.post(t, map[string]any{"action": "login", "emailOrPhone": "ana@example.com", "password": "secret1"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.post(t, map[string]any{"action": "login", "emailOrPhone": "ana@example.com", "password": "newsecret"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestToAPIError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &service.ValidationError{Field: "email", Message: "invalid email"}, http.StatusBadRequest, "invalid email"},
		{"wrapped validation", fmt.Errorf("register: %w", service.ErrPasswordTooShort), http.StatusBadRequest, service.ErrPasswordTooShort.Message},
		{"contact taken", &service.ContactTakenError{ContactType: "phone"}, http.StatusBadRequest, "this phone number is already registered"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"code", service.ErrInvalidCode, http.StatusBadRequest, service.ErrInvalidCode.Error()},
		{"token", service.ErrInvalidOrExpiredToken, http.StatusBadRequest, service.ErrInvalidOrExpiredToken.Error()},
		{"creation", fmt.Errorf("%w: %w", service.ErrAccountCreationFailed, errors.New("disk full")), http.StatusInternalServerError, service.ErrAccountCreationFailed.Error()},
		{"update", fmt.Errorf("%w: %w", service.ErrUpdateFailed, errors.New("disk full")), http.StatusInternalServerError, service.ErrUpdateFailed.Error()},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, authsdk.ErrServerError.Message},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := toAPIError(tc.err)
			require.Equal(t, tc.status, apiErr.StatusCode)
			require.Equal(t, tc.message, apiErr.Message)
		})
	}
}

func TestActionRateLimited(t *testing.T) {
	ts := newTestServer(t, withActionLimit(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}))

	body := []byte(`{"action":"login","emailOrPhone":"a@b.co","password":"secret1"}`)
	for range 2 {
		rec := ts.postRaw(t, body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := ts.postRaw(t, bytes.Clone(body))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
