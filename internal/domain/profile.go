package domain

import (
	"fmt"
	"regexp"
)

// Kind discriminates the profile variants.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// MaxUsernameLength matches the width of the profiles.username column.
const MaxUsernameLength = 50

var cardNumberPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{22}$`)

// UserDetails holds the fields only regular users carry.
type UserDetails struct {
	Gender     string
	CardNumber string
}

// AdminDetails holds the fields only admins carry.
type AdminDetails struct {
	CurrentAccount string
}

// Profile is a user or admin account together with its game lists.
// Exactly one of User or Admin is set, matching Kind.
type Profile struct {
	Username     string
	PasswordHash string
	Email        string
	Name         string
	Surname      string
	Telephone    string

	Kind  Kind
	User  *UserDetails
	Admin *AdminDetails

	lists lists
}

// NewUser builds a user profile owning only "My Games".
func NewUser(username string, details UserDetails) *Profile {
	return &Profile{Username: username, Kind: KindUser, User: &details, lists: newLists()}
}

// NewAdmin builds an admin profile owning only "My Games".
func NewAdmin(username string, details AdminDetails) *Profile {
	return &Profile{Username: username, Kind: KindAdmin, Admin: &details, lists: newLists()}
}

// IsAdmin reports whether the profile is the admin variant.
func (p *Profile) IsAdmin() bool { return p.Kind == KindAdmin }

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	out := *p
	if p.User != nil {
		u := *p.User
		out.User = &u
	}
	if p.Admin != nil {
		a := *p.Admin
		out.Admin = &a
	}
	out.lists = p.lists.clone()
	return &out
}

// ValidateCardNumber checks the two-letter, 22-digit account format.
func ValidateCardNumber(cardNumber string) error {
	if !cardNumberPattern.MatchString(cardNumber) {
		return fmt.Errorf("card number %q: %w", cardNumber, ErrValidation)
	}
	return nil
}

// Registration carries the fields of a new user account. Password is plain text.
type Registration struct {
	Username   string `validate:"required,max=50,nowhitespace"`
	Password   string `validate:"required,max=72"`
	Email      string `validate:"omitempty,email"`
	Name       string `validate:"max=100"`
	Surname    string `validate:"max=100"`
	Telephone  string `validate:"max=30"`
	Gender     string `validate:"max=20"`
	CardNumber string `validate:"required,cardnumber"`
}

// Validate checks the registration before any storage is touched.
func (r Registration) Validate() error {
	return validateStruct(r)
}

// Profile builds the user profile described by the registration, storing
// passwordHash in place of the plain password.
func (r Registration) Profile(passwordHash string) *Profile {
	p := NewUser(r.Username, UserDetails{Gender: r.Gender, CardNumber: r.CardNumber})
	p.PasswordHash = passwordHash
	p.Email = r.Email
	p.Name = r.Name
	p.Surname = r.Surname
	p.Telephone = r.Telephone
	return p
}

// ProfileUpdate carries fully resolved profile values. An empty Password keeps
// the stored one. Gender and CardNumber apply to users, CurrentAccount to admins.
type ProfileUpdate struct {
	Email          string `validate:"omitempty,email"`
	Name           string `validate:"max=100"`
	Surname        string `validate:"max=100"`
	Telephone      string `validate:"max=30"`
	Password       string `validate:"omitempty,max=72"`
	Gender         string `validate:"max=20"`
	CardNumber     string `validate:"omitempty,cardnumber"`
	CurrentAccount string `validate:"max=34"`
}

// Validate checks the fields that do not depend on the profile kind. Stores
// call it before touching storage.
func (u ProfileUpdate) Validate() error {
	return validateStruct(u)
}

// Apply writes the update onto p. passwordHash replaces the stored hash when
// non-empty. Users must keep a card number.
func (u ProfileUpdate) Apply(p *Profile, passwordHash string) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if p.Kind == KindUser {
		if err := ValidateCardNumber(u.CardNumber); err != nil {
			return err
		}
	}

	p.Email = u.Email
	p.Name = u.Name
	p.Surname = u.Surname
	p.Telephone = u.Telephone
	if passwordHash != "" {
		p.PasswordHash = passwordHash
	}
	switch p.Kind {
	case KindUser:
		p.User = &UserDetails{Gender: u.Gender, CardNumber: u.CardNumber}
	case KindAdmin:
		p.Admin = &AdminDetails{CurrentAccount: u.CurrentAccount}
	}
	return nil
}
