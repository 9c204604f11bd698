package authsdk

import (
	"context"
	"net/http"
)

// Login exchanges an email or phone number and password for a session token.
func (c *SDKClient) Login(ctx context.Context, emailOrPhone, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.postAction(ctx, ActionRequest{
		Action:       ActionLogin,
		EmailOrPhone: emailOrPhone,
		Password:     password,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterStart runs the first registration step. The server sends a
// verification code to the declared contact.
func (c *SDKClient) RegisterStart(ctx context.Context, reg Registration) (*RegisterStartResponse, error) {
	var out RegisterStartResponse
	if err := c.postAction(ctx, reg.request(StepStart, ""), &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterComplete redeems the verification code and creates the account.
func (c *SDKClient) RegisterComplete(ctx context.Context, reg Registration, code string) (*RegisterCompleteResponse, error) {
	var out RegisterCompleteResponse
	if err := c.postAction(ctx, reg.request(StepComplete, code), &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset token. The response is the same whether
// or not the account exists.
func (c *SDKClient) ForgotPassword(ctx context.Context, emailOrPhone string) (*Response, error) {
	var out Response
	err := c.postAction(ctx, ActionRequest{
		Action:       ActionForgotPassword,
		EmailOrPhone: emailOrPhone,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword redeems a reset token.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) (*Response, error) {
	var out Response
	err := c.postAction(ctx, ActionRequest{
		Action:          ActionResetPassword,
		Token:           token,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Registration) request(step Step, code string) ActionRequest {
	return ActionRequest{
		Action:           ActionRegister,
		Step:             step,
		Name:             r.Name,
		Surname:          r.Surname,
		ContactType:      r.ContactType,
		Email:            r.Email,
		Phone:            r.Phone,
		Password:         r.Password,
		ConfirmPassword:  r.ConfirmPassword,
		VerificationCode: code,
	}
}
