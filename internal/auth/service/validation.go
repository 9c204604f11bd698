package service

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/misenoti/misenoti/internal/auth/domain"
)

// MinPasswordLength is the shortest password accepted at registration and
// reset.
const MinPasswordLength = 6

// Romanian mobile and landline numbers, local (0...) or international (+4...).
var phonePattern = regexp.MustCompile(`^(\+4|0)[0-9]{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// normalizeIdentifier trims an email-or-phone identifier and lower-cases it
// when it looks like an email.
func normalizeIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "@") {
		return strings.ToLower(s)
	}
	return s
}

// normalizeContact trims value and lower-cases emails.
func normalizeContact(t domain.ContactType, value string) string {
	value = strings.TrimSpace(value)
	if t == domain.ContactEmail {
		return strings.ToLower(value)
	}
	return value
}

// parseContactType maps the wire value to a ContactType. Empty means email.
func parseContactType(s string) (domain.ContactType, error) {
	t := domain.ContactType(strings.TrimSpace(s))
	if t == "" {
		return domain.ContactEmail, nil
	}
	if !t.Valid() {
		return "", invalid("contactType", "invalid contact type")
	}
	return t, nil
}

// validateContact checks value against the format of its channel.
func validateContact(t domain.ContactType, value string) error {
	if value == "" {
		if t == domain.ContactPhone {
			return invalid("phone", "phone number is required")
		}
		return invalid("email", "email is required")
	}

	switch t {
	case domain.ContactEmail:
		if validate.Var(value, "email") != nil {
			return invalid("email", "invalid email")
		}
	case domain.ContactPhone:
		if validate.Var(value, "phone") != nil {
			return invalid("phone", "invalid phone number")
		}
	}
	return nil
}

// validateNewPassword applies the confirm and length rules. An empty confirm
// is accepted when requireConfirm is false.
func validateNewPassword(password, confirm string, requireConfirm bool) error {
	if (requireConfirm || confirm != "") && password != confirm {
		return ErrPasswordMismatch
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
