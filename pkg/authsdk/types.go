package authsdk

import (
	"bytes"
	"encoding/json"
	"time"
)

// ============================================================================
// Actions
// ============================================================================

// Actions accepted by POST /api/auth.
const (
	ActionLogin          = "login"
	ActionRegister       = "register"
	ActionForgotPassword = "forgot_password"
	ActionResetPassword  = "reset_password"
)

// Registration steps.
const (
	StepStart    Step = "1"
	StepComplete Step = "2"
)

// Step is the registration step. Clients send it as a string or a number.
type Step string

// UnmarshalJSON accepts both "2" and 2.
func (s *Step) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Step(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = Step(n.String())
	return nil
}

// ActionRequest is the body of POST /api/auth. Which fields are read depends
// on Action.
type ActionRequest struct {
	Action string `json:"action"`

	// login, forgot_password
	EmailOrPhone string `json:"emailOrPhone,omitempty"`
	Password     string `json:"password,omitempty"`

	// register
	Step             Step   `json:"step,omitempty"`
	Name             string `json:"name,omitempty"`
	Surname          string `json:"surname,omitempty"`
	Nume             string `json:"nume,omitempty"`    // legacy alias of name
	Prenume          string `json:"prenume,omitempty"` // legacy alias of surname
	ContactType      string `json:"contactType,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	VerificationCode string `json:"verificationCode,omitempty"`

	// register, reset_password
	ConfirmPassword string `json:"confirmPassword,omitempty"`

	// reset_password
	Token       string `json:"token,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
}

// GivenName returns name, falling back to the legacy nume field.
func (r ActionRequest) GivenName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Nume
}

// FamilyName returns surname, falling back to the legacy prenume field.
func (r ActionRequest) FamilyName() string {
	if r.Surname != "" {
		return r.Surname
	}
	return r.Prenume
}

// Registration is the client-side input of both registration steps.
type Registration struct {
	Name            string
	Surname         string
	ContactType     string // "email" or "phone"
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// ============================================================================
// Responses
// ============================================================================

// Response is the envelope every action response shares.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// User is the public view of an account. Absent contacts are null.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// RegisterStartResponse confirms that a verification code was sent.
type RegisterStartResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ContactType string `json:"contactType"`
	Contact     string `json:"contact"`
}

type RegisterCompleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	User    User   `json:"user"`
}

// SessionResponse describes a verified session token.
type SessionResponse struct {
	Success   bool      `json:"success"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency probed by /readyz.
type HealthChecks struct {
	Database string `json:"database"`

	// Verifications is set only when verification attempts live outside the
	// database.
	Verifications string `json:"verifications,omitempty"`
}
