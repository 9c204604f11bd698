/*
Package authsdk provides a client SDK for the MiseNoti authentication service
and the wire types its HTTP handlers share.

# Overview

All account operations go through one endpoint, POST /api/auth, with the
operation named by the "action" field: login, register, forgot_password and
reset_password. Every response carries a {"success", "message"} envelope;
failures come back as *APIError with the HTTP status and the server's message.

	client := authsdk.NewSDKClient("http://localhost:8080")

	// Registration is two calls. The first sends a code to the contact.
	reg := authsdk.Registration{
		Name:            "Ana",
		Surname:         "Pop",
		ContactType:     "email",
		Email:           "ana@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
	_, err := client.RegisterStart(ctx, reg)
	created, err := client.RegisterComplete(ctx, reg, codeFromEmail)

	// Log in and inspect the session.
	session, err := client.Authenticate(ctx, "ana@example.com", "secret1")
	info, err := session.Whoami(ctx)

# Password reset

ForgotPassword answers identically for known and unknown accounts. The reset
token is delivered out of band and redeemed with ResetPassword:

	_, err := client.ForgotPassword(ctx, "ana@example.com")
	_, err = client.ResetPassword(ctx, tokenFromEmail, "newpass1", "newpass1")

# Error Handling

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		fmt.Println(apiErr.Message)
	}

# Thread Safety

SDKClient and Session are safe for concurrent use.
*/
package authsdk
