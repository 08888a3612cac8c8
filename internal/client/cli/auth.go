package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/tripauth/internal/client/client"
	"github.com/dmitrijs2005/tripauth/internal/client/form"
	"github.com/dmitrijs2005/tripauth/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// prompt reads one field, stores it with set and echoes the field's
// validation message, if any.
func (a *App) prompt(label string, secret bool, set func(string), fld *form.Field) error {
	var (
		v   string
		err error
	)
	if secret {
		v, err = getPassword(a.reader, label, a.out)
	} else {
		v, err = getSimpleText(a.reader, label, a.out)
	}
	if err != nil {
		return err
	}
	set(v)
	if fld.Error != "" {
		a.println("  ! " + fld.Error)
	}
	return nil
}

// Register prompts for the registration form and creates the account.
// Validation runs locally first with the same pipeline as the server.
func (a *App) Register(ctx context.Context) error {
	var f form.RegisterForm

	steps := []struct {
		label  string
		secret bool
		set    func(string)
		field  *form.Field
	}{
		{"Enter email", false, f.SetEmail, &f.Email},
		{"Enter password", true, f.SetPassword, &f.Password},
		{"Confirm password", true, f.SetConfirmPassword, &f.ConfirmPassword},
		{"Enter first name", false, f.SetFirstName, &f.FirstName},
		{"Enter last name", false, f.SetLastName, &f.LastName},
	}
	for _, s := range steps {
		if err := a.prompt(s.label, s.secret, s.set, s.field); err != nil {
			return err
		}
	}

	if err := f.Validate(); err != nil {
		a.println("Registration failed: " + err.Error())
		return err
	}

	u, err := a.authService.Register(ctx, f.Values())
	if err != nil {
		a.println("Registration failed: " + err.Error())
		return err
	}

	a.println("Registered " + u.Email + ". You can log in now.")
	return nil
}

// Login prompts for credentials, authenticates and persists the session.
func (a *App) Login(ctx context.Context) error {
	var f form.LoginForm

	if err := a.prompt("Enter email", false, f.SetEmail, &f.Email); err != nil {
		return err
	}
	if err := a.prompt("Enter password", true, f.SetPassword, &f.Password); err != nil {
		return err
	}

	if err := f.Validate(); err != nil {
		a.println("Login failed: " + err.Error())
		return err
	}

	s, err := a.authService.Login(ctx, f.Values())
	if err != nil {
		a.println("Login failed: " + err.Error())
		return err
	}

	a.session = s
	a.println("Welcome, " + displayName(s) + "!")
	return nil
}

// WhoAmI verifies the persisted token with the server.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.WhoAmI(ctx)
	if err != nil {
		var rej *client.RejectedError
		switch {
		case errors.Is(err, client.ErrNotLoggedIn):
			a.println("Not logged in")
		case errors.As(err, &rej):
			a.session = nil
			a.println("Session ended: " + rej.Message)
		default:
			a.println("Could not verify session: " + err.Error())
		}
		return err
	}

	a.println(u.FirstName + " " + u.LastName + " <" + u.Email + ">")
	a.println("member since " + u.CreatedAt.Format("2006-01-02"))
	return nil
}

// Logout ends the session. Local keys are cleared even if the server
// cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	a.session = nil
	if err != nil {
		a.println("Logged out locally: " + err.Error())
		return err
	}
	a.println("Logged out")
	return nil
}

func displayName(s *models.Session) string {
	if s.User != nil && s.User.FirstName != "" {
		return s.User.FirstName
	}
	return s.Email
}
