package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the MiseNoti authentication service.
// It covers the public action endpoint and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Authenticate logs in and wraps the returned token in a Session.
func (c *SDKClient) Authenticate(ctx context.Context, emailOrPhone, password string) (*Session, error) {
	resp, err := c.Login(ctx, emailOrPhone, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, resp.Token, resp.User), nil
}

// NewSessionFromToken wraps a token obtained earlier, e.g. one stored by a
// previous login.
func (c *SDKClient) NewSessionFromToken(token string) *Session {
	return newSession(c, token, User{})
}
