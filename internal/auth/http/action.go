package http

import (
	"errors"
	"net/http"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/metrics"
	"github.com/misenoti/misenoti/internal/auth/service"
	"github.com/misenoti/misenoti/pkg/authsdk"
	"github.com/misenoti/misenoti/pkg/errutil"
	"github.com/misenoti/misenoti/pkg/httpx"
	"github.com/misenoti/misenoti/pkg/slogx"
)

// Success messages. forgotPasswordMessage is sent for known and unknown
// identifiers alike.
const (
	loginMessage          = "login successful"
	codeSentMessage       = "verification code sent"
	accountCreatedMessage = "account created"
	forgotPasswordMessage = "if an account exists for these details, you will receive reset instructions"
	passwordResetMessage  = "password has been reset"
)

// ActionHandler serves the single auth endpoint. The operation is chosen by
// the "action" field of the JSON body.
type ActionHandler struct {
	Auth    *service.AuthService
	Metrics *metrics.Metrics
}

// ServeHTTP dispatches on the action field.
//
//	@Summary		Auth action endpoint
//	@Description	Multiplexes login, two-step registration, forgot_password and reset_password on the "action" field.
//	@Description
//	@Description	register step "1" validates the input and sends a verification code to the declared contact.
//	@Description	register step "2" redeems the code and creates the account (201).
//	@Description	forgot_password answers identically whether or not the account exists. The reset token is only delivered out of band.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ActionRequest				true	"Action and its fields"
//	@Success		200		{object}	authsdk.LoginResponse				"login"
//	@Success		201		{object}	authsdk.RegisterCompleteResponse	"register step 2"
//	@Failure		400		{object}	authsdk.Response					"Validation failure, invalid code or token, contact taken, invalid action"
//	@Failure		401		{object}	authsdk.Response					"Invalid credentials"
//	@Failure		405		{object}	authsdk.Response					"Method not allowed"
//	@Failure		429		{object}	authsdk.Response					"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.Response					"Internal server error"
//	@Router			/api/auth [post].
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		authsdk.ErrMethodNotAllowed.WriteError(w)
		return
	}

	var req authsdk.ActionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		slogx.FromContext(r.Context()).Debug("rejected request body", "err", err)
		h.Metrics.ObserveAction("invalid", metrics.OutcomeRejected)
		if errors.Is(err, httpx.ErrBodyTooLarge) {
			authsdk.ErrBodyTooLarge.WriteError(w)
			return
		}
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	switch req.Action {
	case authsdk.ActionLogin:
		h.login(w, r, req)
	case authsdk.ActionRegister:
		h.register(w, r, req)
	case authsdk.ActionForgotPassword:
		h.forgotPassword(w, r, req)
	case authsdk.ActionResetPassword:
		h.resetPassword(w, r, req)
	default:
		h.Metrics.ObserveAction("invalid", metrics.OutcomeRejected)
		authsdk.ErrInvalidAction.WriteError(w)
	}
}

func (h *ActionHandler) login(w http.ResponseWriter, r *http.Request, req authsdk.ActionRequest) {
	res, err := h.Auth.Login(r.Context(), req.EmailOrPhone, req.Password)
	if err != nil {
		h.fail(w, r, req.Action, err)
		return
	}

	h.Metrics.ObserveAction(req.Action, metrics.OutcomeSuccess)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Success: true,
		Message: loginMessage,
		Token:   res.Token,
		User:    toUser(res.User.Profile()),
	})
}

func (h *ActionHandler) register(w http.ResponseWriter, r *http.Request, req authsdk.ActionRequest) {
	in := service.RegistrationInput{
		Name:             req.GivenName(),
		Surname:          req.FamilyName(),
		ContactType:      req.ContactType,
		Email:            req.Email,
		Phone:            req.Phone,
		Password:         req.Password,
		ConfirmPassword:  req.ConfirmPassword,
		VerificationCode: req.VerificationCode,
	}

	switch req.Step {
	case "", authsdk.StepStart:
		pending, err := h.Auth.RegisterStart(r.Context(), in)
		if err != nil {
			h.fail(w, r, req.Action, err)
			return
		}

		h.Metrics.ObserveAction(req.Action, metrics.OutcomeSuccess)
		httpx.WriteJSON(w, http.StatusOK, authsdk.RegisterStartResponse{
			Success:     true,
			Message:     codeSentMessage,
			ContactType: string(pending.ContactType),
			Contact:     pending.Contact,
		})

	case authsdk.StepComplete:
		user, err := h.Auth.RegisterComplete(r.Context(), in)
		if err != nil {
			h.fail(w, r, req.Action, err)
			return
		}

		h.Metrics.ObserveAction(req.Action, metrics.OutcomeSuccess)
		httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterCompleteResponse{
			Success: true,
			Message: accountCreatedMessage,
			UserID:  user.ID,
			User:    toUser(user.Profile()),
		})

	default:
		h.fail(w, r, req.Action, &service.ValidationError{Field: "step", Message: "invalid registration step"})
	}
}

func (h *ActionHandler) forgotPassword(w http.ResponseWriter, r *http.Request, req authsdk.ActionRequest) {
	if err := h.Auth.ForgotPassword(r.Context(), req.EmailOrPhone); err != nil {
		h.fail(w, r, req.Action, err)
		return
	}

	h.Metrics.ObserveAction(req.Action, metrics.OutcomeSuccess)
	httpx.WriteJSON(w, http.StatusOK, authsdk.Response{Success: true, Message: forgotPasswordMessage})
}

func (h *ActionHandler) resetPassword(w http.ResponseWriter, r *http.Request, req authsdk.ActionRequest) {
	if err := h.Auth.ResetPassword(r.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		h.fail(w, r, req.Action, err)
		return
	}

	h.Metrics.ObserveAction(req.Action, metrics.OutcomeSuccess)
	httpx.WriteJSON(w, http.StatusOK, authsdk.Response{Success: true, Message: passwordResetMessage})
}

// fail maps a service error to its response. Only unexpected failures are
// logged at error level, and their cause never reaches the client.
func (h *ActionHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	apiErr := toAPIError(err)

	outcome := metrics.OutcomeRejected
	if apiErr.StatusCode >= http.StatusInternalServerError {
		outcome = metrics.OutcomeError
		errutil.LogError(slogx.FromContext(r.Context()), "auth action failed", err)
	}
	h.Metrics.ObserveAction(action, outcome)

	apiErr.WriteError(w)
}

func toAPIError(err error) *authsdk.APIError {
	var (
		validation *service.ValidationError
		taken      *service.ContactTakenError
	)

	switch {
	case errors.As(err, &validation):
		return authsdk.NewAPIError(http.StatusBadRequest, validation.Message)
	case errors.As(err, &taken):
		return authsdk.NewAPIError(http.StatusBadRequest, taken.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return authsdk.NewAPIError(http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInvalidCode):
		return authsdk.NewAPIError(http.StatusBadRequest, service.ErrInvalidCode.Error())
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return authsdk.NewAPIError(http.StatusBadRequest, service.ErrInvalidOrExpiredToken.Error())
	case errors.Is(err, service.ErrAccountCreationFailed):
		return authsdk.NewAPIError(http.StatusInternalServerError, service.ErrAccountCreationFailed.Error())
	case errors.Is(err, service.ErrUpdateFailed):
		return authsdk.NewAPIError(http.StatusInternalServerError, service.ErrUpdateFailed.Error())
	default:
		return authsdk.ErrServerError
	}
}

func toUser(p domain.Profile) authsdk.User {
	return authsdk.User{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
	}
}
