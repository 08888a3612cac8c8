// Package form keeps the state of the client's input forms. Each field is
// an explicit record of its value, whether the user has touched it and the
// message of its current validation failure.
package form

import (
	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

// Rule validates one value.
type Rule func(string) error

type Field struct {
	Value   string
	Touched bool
	Error   string
}

// Set stores value, marks the field touched and validates it with rules in
// order. Error holds the message of the first failure, or "".
func (f *Field) Set(value string, rules ...Rule) {
	f.Value = value
	f.Touched = true
	f.Error = ""
	for _, rule := range rules {
		if err := rule(value); err != nil {
			f.Error = message(err)
			return
		}
	}
}

func (f *Field) touch() { f.Touched = true }

func message(err error) string {
	if err == nil {
		return ""
	}
	return common.AsFailure(err, &common.Failure{Kind: common.KindValidation, Message: err.Error()}).Message
}

type RegisterForm struct {
	Email           Field
	Password        Field
	ConfirmPassword Field
	FirstName       Field
	LastName        Field
}

func (f *RegisterForm) SetEmail(v string) {
	f.Email.Set(v, validation.Required, validation.Email)
}

// SetPassword also revalidates a touched confirmation.
func (f *RegisterForm) SetPassword(v string) {
	f.Password.Set(v, validation.Required, validation.Password)
	if f.ConfirmPassword.Touched {
		f.SetConfirmPassword(f.ConfirmPassword.Value)
	}
}

func (f *RegisterForm) SetConfirmPassword(v string) {
	f.ConfirmPassword.Set(v, validation.Required, func(s string) error {
		return validation.ConfirmPassword(f.Password.Value, s)
	})
}

func (f *RegisterForm) SetFirstName(v string) {
	f.FirstName.Set(v, validation.Required, validation.Name)
}

func (f *RegisterForm) SetLastName(v string) {
	f.LastName.Set(v, validation.Required, validation.Name)
}

// Values returns the form as the auth service takes it.
func (f *RegisterForm) Values() validation.RegistrationForm {
	return validation.RegistrationForm{
		Email:           f.Email.Value,
		Password:        f.Password.Value,
		ConfirmPassword: f.ConfirmPassword.Value,
		FirstName:       f.FirstName.Value,
		LastName:        f.LastName.Value,
	}
}

// Validate marks every field touched and runs the registration pipeline.
// It returns the first failure, or nil.
func (f *RegisterForm) Validate() error {
	for _, fld := range []*Field{&f.Email, &f.Password, &f.ConfirmPassword, &f.FirstName, &f.LastName} {
		fld.touch()
	}
	return validation.Register(f.Values())
}

type LoginForm struct {
	Email    Field
	Password Field
}

func (f *LoginForm) SetEmail(v string) {
	f.Email.Set(v, validation.Required)
}

func (f *LoginForm) SetPassword(v string) {
	f.Password.Set(v, validation.Required)
}

func (f *LoginForm) Values() validation.LoginForm {
	return validation.LoginForm{Email: f.Email.Value, Password: f.Password.Value}
}

func (f *LoginForm) Validate() error {
	f.Email.touch()
	f.Password.touch()
	return validation.Login(f.Values())
}
