//go:build e2e

package auth_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/misenoti/misenoti/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestTamperedSessionRejected(t *testing.T) {
	ctr := setupAuthContainer(t, nil)
	client := authsdk.NewSDKClient(ctr.BaseURL)
	ctx := t.Context()

	registerUser(t, ctr, client, emailRegistration("eve@example.com"))

	session, err := client.Authenticate(ctx, "eve@example.com", testPassword)
	require.NoError(t, err)

	token := []byte(session.Token())
	last := len(token) - 1
	if token[last] == 'A' {
		token[last] = 'B'
	} else {
		token[last] = 'A'
	}

	_, err = client.NewSessionFromToken(string(token)).Whoami(ctx)
	assertStatus(t, err, http.StatusUnauthorized)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctr := setupAuthContainer(t, nil)
	client := authsdk.NewSDKClient(ctr.BaseURL)
	ctx := t.Context()

	registerUser(t, ctr, client, emailRegistration("zoe@example.com"))

	_, wrongPassword := client.Login(ctx, "zoe@example.com", "wrongpass")
	_, unknownUser := client.Login(ctx, "nobody@example.com", "wrongpass")

	assertStatus(t, wrongPassword, http.StatusUnauthorized)
	assertStatus(t, unknownUser, http.StatusUnauthorized)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestActionEndpointRejectsOtherMethods(t *testing.T) {
	ctr := setupAuthContainer(t, nil)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, ctr.BaseURL+"/api/auth", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestActionEndpointRejectsUnknownAction(t *testing.T) {
	ctr := setupAuthContainer(t, nil)

	resp, err := http.Post(ctr.BaseURL+"/api/auth", "application/json",
		bytes.NewBufferString(`{"action":"delete_everything"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
