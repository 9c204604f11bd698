package domain

import (
	"strings"
	"time"
)

// ContactType names the channel an account was registered with.
type ContactType string

const (
	ContactEmail ContactType = "email"
	ContactPhone ContactType = "phone"
)

// Valid reports whether t is a known contact type.
func (t ContactType) Valid() bool {
	return t == ContactEmail || t == ContactPhone
}

// User is a registered account. Exactly the contact supplied at registration
// is set; the other is empty.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string // argon2id PHC string, never leaves the service layer
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PrimaryContact returns the email when set, otherwise the phone.
func (u User) PrimaryContact() (ContactType, string) {
	if u.Email != "" {
		return ContactEmail, u.Email
	}
	return ContactPhone, u.Phone
}

// Profile is the outward view of a User without the password hash.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile strips the password hash. Absent contacts become nil so they
// serialize as JSON null.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     optional(u.Email),
		Phone:     optional(u.Phone),
		CreatedAt: u.CreatedAt,
	}
}

// DisplayName joins given and family name the way accounts are shown.
func DisplayName(name, surname string) string {
	return strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(surname))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
