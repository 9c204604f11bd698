package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/misenoti/misenoti/pkg/httpx"
	"github.com/misenoti/misenoti/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestCORS(t *testing.T) {
	t.Run("preflight short-circuits", func(t *testing.T) {
		called := false
		h := httpx.CORS(httpx.CORSConfig{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodOptions, "/api/auth", nil)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.False(t, called)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "POST, GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("configured origin", func(t *testing.T) {
		h := httpx.CORS(httpx.CORSConfig{AllowedOrigin: "https://app.example.com"})(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("plain OPTIONS reaches the handler", func(t *testing.T) {
		h := httpx.CORS(httpx.CORSConfig{})(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/auth", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Action string `json:"action"`
	}

	decode := func(raw string) (body, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		var v body
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &v)
		return v, err
	}

	v, err := decode(`{"action":"login","unknown":1}`)
	require.NoError(t, err)
	require.Equal(t, "login", v.Action)

	_, err = decode(`{"action":"login"}   `)
	require.NoError(t, err)

	_, err = decode(`{"action":"login"}{}`)
	require.Error(t, err)

	_, err = decode(``)
	require.Error(t, err)

	_, err = decode(`{"action":"` + strings.Repeat("a", httpx.MaxBodyBytes) + `"}`)
	require.ErrorIs(t, err, httpx.ErrBodyTooLarge)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]any{"success": true})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		token  string
		ok     bool
	}{
		"valid":        {"Bearer abc.def.ghi", "abc.def.ghi", true},
		"lower scheme": {"bearer abc", "abc", true},
		"missing":      {"", "", false},
		"basic":        {"Basic dXNlcjpwYXNz", "", false},
		"empty token":  {"Bearer   ", "", false},
		"no space":     {"Bearerabc", "", false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			token, ok := httpx.BearerToken(req)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.token, token)
		})
	}
}

func TestAuthnMiddleware(t *testing.T) {
	now := time.Unix(1700000000, 0)
	codec, err := jwtx.NewCodec([]byte("0123456789abcdef0123456789abcdef"), jwtx.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	var seen jwtx.Claims
	h := httpx.AuthnMiddleware(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFromContext(r.Context())
		require.True(t, ok)
		seen = claims
		w.WriteHeader(http.StatusOK)
	}))

	send := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	token, err := codec.Issue(jwtx.NewSessionClaims("user-1", "ana@example.com"), time.Hour)
	require.NoError(t, err)

	rec := send("Bearer " + token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", seen.UserID)
	require.Equal(t, "ana@example.com", seen.Email)

	rec = send("")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
	require.JSONEq(t, `{"success":false,"message":"missing bearer token"}`, rec.Body.String())

	rec = send("Bearer " + token + "x")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"success":false,"message":"invalid session token"}`, rec.Body.String())

	now = now.Add(2 * time.Hour)
	rec = send("Bearer " + token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimsFromContextMissing(t *testing.T) {
	_, ok := httpx.ClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.False(t, ok)
}
