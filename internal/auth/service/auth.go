package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/misenoti/misenoti/internal/auth/domain"
	"github.com/misenoti/misenoti/internal/auth/notify"
	"github.com/misenoti/misenoti/internal/auth/store"
	"github.com/misenoti/misenoti/pkg/cryptox"
	"github.com/misenoti/misenoti/pkg/idx"
	"github.com/misenoti/misenoti/pkg/jwtx"
	"github.com/misenoti/misenoti/pkg/slogx"
)

// DefaultResetTTL is how long a password reset token stays redeemable.
const DefaultResetTTL = time.Hour

// AuthService implements login, two-step registration and the
// forgot/reset password flow.
type AuthService struct {
	Store    store.Store
	Hasher   *cryptox.PasswordHasher
	Codec    *jwtx.Codec
	Gate     *VerificationGate
	Notifier notify.Notifier

	SessionTTL time.Duration
	ResetTTL   time.Duration
	Now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type LoginResult struct {
	Token string
	User  domain.User
}

// RegistrationInput carries the fields of both registration steps. Step one
// ignores VerificationCode.
type RegistrationInput struct {
	Name             string
	Surname          string
	ContactType      string
	Email            string
	Phone            string
	Password         string
	ConfirmPassword  string
	VerificationCode string
}

type RegistrationPending struct {
	ContactType domain.ContactType
	Contact     string
	ExpiresAt   time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}

// dummy returns a hash that unknown identifiers are verified against, so a
// miss costs as much as a wrong password.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		token, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return
		}
		s.dummyHash, _ = s.Hasher.Hash(token)
	})
	return s.dummyHash
}

// Login checks identifier (email or phone) and password and issues a
// session token. Unknown identifiers and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	log := slogx.FromContext(ctx)

	identifier = normalizeIdentifier(identifier)
	if identifier == "" || password == "" {
		return LoginResult{}, invalid("emailOrPhone", "email/phone and password are required")
	}

	user, err := s.Store.Users().GetUserByContact(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		s.Hasher.Verify(password, s.dummy())
		log.Info("login rejected", "reason", "unknown_identifier")
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		log.Info("login rejected", "reason", "password_mismatch", "user_id", user.ID)
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.Codec.Issue(jwtx.NewSessionClaims(user.ID, user.Email), s.sessionTTL())
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	log.Info("login succeeded", "user_id", user.ID)
	return LoginResult{Token: token, User: user}, nil
}

// validate normalizes in and returns the declared contact.
func (in *RegistrationInput) validate(requireConfirm bool) (domain.ContactType, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)

	if in.Name == "" || in.Surname == "" || in.Password == "" || (requireConfirm && in.ConfirmPassword == "") {
		return "", "", invalid("name", "name, surname and password are required")
	}
	if err := validateNewPassword(in.Password, in.ConfirmPassword, requireConfirm); err != nil {
		return "", "", err
	}

	contactType, err := parseContactType(in.ContactType)
	if err != nil {
		return "", "", err
	}

	raw := in.Email
	if contactType == domain.ContactPhone {
		raw = in.Phone
	}
	contact := normalizeContact(contactType, raw)
	if err := validateContact(contactType, contact); err != nil {
		return "", "", err
	}

	return contactType, contact, nil
}

// RegisterStart validates a registration and sends a verification code to
// the declared contact. No account is created.
func (s *AuthService) RegisterStart(ctx context.Context, in RegistrationInput) (RegistrationPending, error) {
	log := slogx.FromContext(ctx)

	contactType, contact, err := in.validate(true)
	if err != nil {
		return RegistrationPending{}, err
	}

	field := store.FieldEmail
	if contactType == domain.ContactPhone {
		field = store.FieldPhone
	}
	exists, err := s.Store.Users().ContactExists(ctx, field, contact)
	if err != nil {
		return RegistrationPending{}, fmt.Errorf("failed to check contact: %w", err)
	}
	if exists {
		return RegistrationPending{}, &ContactTakenError{ContactType: contactType}
	}

	code, expiresAt, err := s.Gate.Issue(ctx, contactType, contact)
	if err != nil {
		return RegistrationPending{}, err
	}

	err = s.Notifier.SendVerificationCode(ctx, notify.Message{
		Purpose:   notify.PurposeVerification,
		Channel:   contactType,
		To:        contact,
		Name:      domain.DisplayName(in.Name, in.Surname),
		Secret:    code,
		ExpiresAt: expiresAt,
	})
	if errors.Is(err, notify.ErrUnsupportedChannel) {
		if err := s.Gate.Revoke(ctx, contact); err != nil {
			log.Warn("failed to revoke undeliverable verification code", "error", err)
		}
		log.Warn("verification channel not supported by notifier", "contact_type", contactType)
		return RegistrationPending{}, invalid(string(contactType), fmt.Sprintf("%s registration is not available", contactType))
	}
	if err != nil {
		return RegistrationPending{}, fmt.Errorf("failed to deliver verification code: %w", err)
	}

	log.Info("verification code issued", "contact_type", contactType)
	return RegistrationPending{ContactType: contactType, Contact: contact, ExpiresAt: expiresAt}, nil
}

// RegisterComplete redeems the verification code and creates the account
// with only the verified contact set. Input is validated before the code is
// checked so a malformed request never burns a valid code.
func (s *AuthService) RegisterComplete(ctx context.Context, in RegistrationInput) (domain.User, error) {
	log := slogx.FromContext(ctx)

	contactType, contact, err := in.validate(false)
	if err != nil {
		return domain.User{}, err
	}

	code := strings.TrimSpace(in.VerificationCode)
	if code == "" {
		return domain.User{}, ErrInvalidCode
	}
	ok, err := s.Gate.Check(ctx, contactType, contact, code)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		log.Info("verification code rejected", "contact_type", contactType)
		return domain.User{}, ErrInvalidCode
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         domain.DisplayName(in.Name, in.Surname),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if contactType == domain.ContactPhone {
		user.Phone = contact
	} else {
		user.Email = contact
	}

	created, err := s.Store.Users().CreateUser(ctx, user)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, &ContactTakenError{ContactType: contactType}
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrAccountCreationFailed, err)
	}

	log.Info("account created", "user_id", created.ID, "contact_type", contactType)
	return created, nil
}

// ForgotPassword issues a reset token for the account behind identifier and
// hands it to the notifier. It succeeds whether or not the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, identifier string) error {
	log := slogx.FromContext(ctx)

	identifier = normalizeIdentifier(identifier)
	if identifier == "" {
		return invalid("emailOrPhone", "email or phone is required")
	}

	user, err := s.Store.Users().GetUserByContact(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		log.Info("password reset requested for unknown identifier")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	now := s.now()
	reset := domain.PasswordReset{
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(s.resetTTL()),
		CreatedAt: now,
	}
	if err := s.Store.PasswordResets().UpsertPasswordReset(ctx, reset); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	channel, to := user.PrimaryContact()
	err = s.Notifier.SendPasswordReset(ctx, notify.Message{
		Purpose:   notify.PurposePasswordReset,
		Channel:   channel,
		To:        to,
		Name:      user.Name,
		Secret:    token,
		ExpiresAt: reset.ExpiresAt,
	})
	if err != nil {
		log.Error("failed to deliver password reset", "user_id", user.ID, "error", err)
		return nil
	}

	log.Info("password reset issued", "user_id", user.ID)
	return nil
}

// ResetPassword redeems token and replaces the account's password. The token
// is consumed in the same transaction as the update.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	log := slogx.FromContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" || confirmPassword == "" {
		return invalid("token", "all fields are required")
	}
	if err := validateNewPassword(newPassword, confirmPassword, true); err != nil {
		return err
	}

	tokenHash := cryptox.FingerprintToken(token)
	now := s.now()

	if _, err := s.Store.PasswordResets().GetActivePasswordReset(ctx, tokenHash, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to load reset token: %w", err)
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var userID string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := tx.PasswordResets().ConsumePasswordReset(ctx, tokenHash, now)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		if err != nil {
			return fmt.Errorf("failed to consume reset token: %w", err)
		}
		userID = id

		if err := tx.Users().UpdatePasswordHash(ctx, id, hash); err != nil {
			return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("password reset completed", "user_id", userID)
	return nil
}
