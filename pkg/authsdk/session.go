package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// SessionPath verifies the caller's session token.
const SessionPath = "/v1/session"

// Session holds a session token obtained by logging in. Session tokens
// cannot be refreshed; once expired, log in again.
type Session struct {
	client *SDKClient

	mu    sync.RWMutex
	token string
	user  User
}

func newSession(client *SDKClient, token string, user User) *Session {
	return &Session{client: client, token: token, user: user}
}

// Token returns the session token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the account returned at login. It is empty for sessions
// built with NewSessionFromToken.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Whoami asks the server to verify the token and describe it.
func (s *Session) Whoami(ctx context.Context) (*SessionResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, SessionPath, nil, nil)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// doAuthRequest performs an HTTP request carrying the session token.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	token := s.Token()
	if token == "" {
		return nil, fmt.Errorf("session has no token")
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}
