// Package validation holds the input rules for registration and login.
// Rules are pure functions; the pipelines run them in a fixed order and
// stop at the first failure.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/tripauth/internal/common"
)

const (
	MinPasswordLength = 8
	MinNameLength     = 2
	// MinLegacyPasswordLength is the only check the legacy login applied.
	MinLegacyPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationForm is the input of register.
type RegistrationForm struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// LoginForm is the input of login.
type LoginForm struct {
	Email    string
	Password string
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Required fails when s is blank.
func Required(s string) error {
	if !present(s) {
		return common.ErrMissingFields
	}
	return nil
}

// Email checks the local@domain.tld shape.
func Email(s string) error {
	if !emailPattern.MatchString(strings.TrimSpace(s)) {
		return common.ErrInvalidEmail
	}
	return nil
}

// Password checks the minimum length, counted in characters.
func Password(s string) error {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return common.ErrPasswordTooShort
	}
	return nil
}

// ConfirmPassword checks that the confirmation repeats the password.
func ConfirmPassword(password, confirm string) error {
	if password != confirm {
		return common.ErrPasswordMismatch
	}
	return nil
}

// Name checks the minimum length of a first or last name.
func Name(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < MinNameLength {
		return common.ErrNameTooShort
	}
	return nil
}

// Register runs the registration pipeline. Email uniqueness is the last
// rule and needs the credential store, so it is checked by the caller.
func Register(f RegistrationForm) error {
	steps := []func() error{
		func() error {
			for _, v := range []string{f.Email, f.Password, f.ConfirmPassword, f.FirstName, f.LastName} {
				if !present(v) {
					return common.ErrMissingFields
				}
			}
			return nil
		},
		func() error { return ConfirmPassword(f.Password, f.ConfirmPassword) },
		func() error { return Password(f.Password) },
		func() error { return Email(f.Email) },
		func() error {
			if err := Name(f.FirstName); err != nil {
				return err
			}
			return Name(f.LastName)
		},
	}
	return run(steps)
}

// Login runs the login pipeline: both fields present.
func Login(f LoginForm) error {
	if !present(f.Email) || f.Password == "" {
		return common.ErrMissingCredentials
	}
	return nil
}

func run(steps []func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
