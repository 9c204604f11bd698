package service

import (
	"errors"

	"github.com/misenoti/misenoti/internal/auth/domain"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned for an unknown identifier and for a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrContactTaken          = errors.New("contact already registered")
	ErrInvalidCode           = errors.New("incorrect verification code")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrAccountCreationFailed = errors.New("account creation failed")
	ErrUpdateFailed          = errors.New("password update failed")
)

// ValidationError is a rejected input. Message is safe to show to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var (
	ErrPasswordMismatch = invalid("confirmPassword", "passwords do not match")
	ErrPasswordTooShort = invalid("password", "password must be at least 6 characters")
)

// ContactTakenError names the channel whose value is already registered.
type ContactTakenError struct {
	ContactType domain.ContactType
}

func (e *ContactTakenError) Error() string {
	if e.ContactType == domain.ContactPhone {
		return "this phone number is already registered"
	}
	return "this email is already registered"
}

func (e *ContactTakenError) Is(target error) bool { return target == ErrContactTaken }
