package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer records the last action request and answers with a canned
// response per action.
func fakeServer(t *testing.T, last *ActionRequest) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth", func(w http.ResponseWriter, r *http.Request) {
		var req ActionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*last = req

		w.Header().Set("Content-Type", "application/json")
		switch {
		case req.Action == ActionLogin && req.Password == "secret1":
			email := req.EmailOrPhone
			_ = json.NewEncoder(w).Encode(LoginResponse{
				Success: true,
				Message: "login successful",
				Token:   "tok",
				User:    User{ID: "u1", Name: "Ana Pop", Email: &email},
			})
		case req.Action == ActionLogin:
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(Response{Message: "invalid credentials"})
		case req.Action == ActionRegister && req.Step == StepStart:
			_ = json.NewEncoder(w).Encode(RegisterStartResponse{
				Success: true, ContactType: req.ContactType, Contact: req.Email,
			})
		case req.Action == ActionRegister && req.Step == StepComplete:
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(RegisterCompleteResponse{Success: true, UserID: "u1"})
		case req.Action == ActionForgotPassword, req.Action == ActionResetPassword:
			_ = json.NewEncoder(w).Encode(Response{Success: true, Message: "ok"})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(Response{Message: "invalid action"})
		}
	})
	mux.HandleFunc("GET /v1/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(Response{Message: "invalid session token"})
			return
		}
		_ = json.NewEncoder(w).Encode(SessionResponse{Success: true, UserID: "u1"})
	})
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Version: "test"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "degraded",
			Checks: &HealthChecks{Database: "error: closed"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAuthenticate(t *testing.T) {
	var last ActionRequest
	srv := fakeServer(t, &last)
	client := NewSDKClient(srv.URL + "/")

	session, err := client.Authenticate(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token())
	assert.Equal(t, "u1", session.User().ID)
	assert.Equal(t, ActionLogin, last.Action)

	info, err := session.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", info.UserID)
}

func TestClientLoginError(t *testing.T) {
	var last ActionRequest
	srv := fakeServer(t, &last)
	client := NewSDKClient(srv.URL)

	_, err := client.Login(context.Background(), "ana@example.com", "wrong")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestClientRegister(t *testing.T) {
	var last ActionRequest
	srv := fakeServer(t, &last)
	client := NewSDKClient(srv.URL)
	ctx := context.Background()

	reg := Registration{
		Name:            "Ana",
		Surname:         "Pop",
		ContactType:     "email",
		Email:           "ana@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}

	started, err := client.RegisterStart(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", started.Contact)
	assert.Empty(t, last.VerificationCode)

	created, err := client.RegisterComplete(ctx, reg, "123456")
	require.NoError(t, err)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, StepComplete, last.Step)
	assert.Equal(t, "123456", last.VerificationCode)
}

func TestClientPasswordReset(t *testing.T) {
	var last ActionRequest
	srv := fakeServer(t, &last)
	client := NewSDKClient(srv.URL)
	ctx := context.Background()

	_, err := client.ForgotPassword(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, ActionForgotPassword, last.Action)

	_, err = client.ResetPassword(ctx, "reset-token", "newpass1", "newpass1")
	require.NoError(t, err)
	assert.Equal(t, "reset-token", last.Token)
	assert.Equal(t, "newpass1", last.NewPassword)
}

func TestClientHealth(t *testing.T) {
	var last ActionRequest
	srv := fakeServer(t, &last)
	client := NewSDKClient(srv.URL)

	live, err := client.GetLiveness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
	require.NotNil(t, ready)
	assert.Equal(t, "error: closed", ready.Checks.Database)
}

func TestSessionWithoutToken(t *testing.T) {
	client := NewSDKClient("http://127.0.0.1:0")
	_, err := client.NewSessionFromToken("").Whoami(context.Background())
	require.Error(t, err)
}

func TestStepUnmarshal(t *testing.T) {
	tests := map[string]Step{
		`{"step":"2"}`:  StepComplete,
		`{"step":2}`:    StepComplete,
		`{"step":1}`:    StepStart,
		`{"step":null}`: "",
		`{}`:            "",
	}
	for in, want := range tests {
		var req ActionRequest
		require.NoError(t, json.Unmarshal([]byte(in), &req), in)
		assert.Equal(t, want, req.Step, in)
	}
}

func TestActionRequestLegacyNames(t *testing.T) {
	var req ActionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"nume":"Ana","prenume":"Pop"}`), &req))
	assert.Equal(t, "Ana", req.GivenName())
	assert.Equal(t, "Pop", req.FamilyName())

	req.Name = "Ioana"
	assert.Equal(t, "Ioana", req.GivenName())
}
