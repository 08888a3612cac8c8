package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tripauth/internal/client/client"
	"github.com/dmitrijs2005/tripauth/internal/client/config"
	"github.com/dmitrijs2005/tripauth/internal/client/models"
	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

// ---- fake auth service ----

type fakeAuthService struct {
	RegisterErr error
	LoginErr    error
	RestoreErr  error
	WhoAmIErr   error
	LogoutErr   error
	CloseErr    error

	Session *models.Session
	User    *models.User

	LastRegister  *validation.RegistrationForm
	LastLogin     *validation.LoginForm
	RegisterCalls int
	LoginCalls    int
	WhoAmICalls   int
	LogoutCalls   int
	Closed        bool
}

func (f *fakeAuthService) Register(ctx context.Context, form validation.RegistrationForm) (*models.User, error) {
	f.RegisterCalls++
	f.LastRegister = &form
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return &models.User{Email: validation.NormalizeEmail(form.Email), FirstName: form.FirstName}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, form validation.LoginForm) (*models.Session, error) {
	f.LoginCalls++
	f.LastLogin = &form
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.Session, nil
}

func (f *fakeAuthService) Restore(ctx context.Context) (*models.Session, error) {
	if f.RestoreErr != nil {
		return nil, f.RestoreErr
	}
	if f.Session == nil {
		return nil, client.ErrNotLoggedIn
	}
	return f.Session, nil
}

func (f *fakeAuthService) WhoAmI(ctx context.Context) (*models.User, error) {
	f.WhoAmICalls++
	if f.WhoAmIErr != nil {
		return nil, f.WhoAmIErr
	}
	return f.User, nil
}

func (f *fakeAuthService) Logout(ctx context.Context) error {
	f.LogoutCalls++
	f.Session = nil
	return f.LogoutErr
}

func (f *fakeAuthService) Ping(ctx context.Context) error { return nil }

func (f *fakeAuthService) Close(ctx context.Context) error {
	f.Closed = true
	return f.CloseErr
}

func newTestApp(t *testing.T, svc *fakeAuthService, input string) (*App, *bytes.Buffer) {
	t.Helper()
	stubTerminal(t, false, nil, errors.New("not a terminal"))
	var out bytes.Buffer
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return newAppWithService(cfg, svc, strings.NewReader(input), &out), &out
}

func testUser() *models.User {
	return &models.User{
		PublicID:  "u-1",
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		CreatedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	}
}

// ---- Register ----

func TestRegister_Success(t *testing.T) {
	svc := &fakeAuthService{}
	a, out := newTestApp(t, svc, "Ada@Example.com\nlongpassword\nlongpassword\nAda\nLovelace\n")

	require.NoError(t, a.Register(context.Background()))
	require.Equal(t, 1, svc.RegisterCalls)
	assert.Equal(t, "Ada@Example.com", svc.LastRegister.Email)
	assert.Equal(t, "Lovelace", svc.LastRegister.LastName)
	assert.Contains(t, out.String(), "Registered ada@example.com. You can log in now.")
	assert.False(t, a.isLoggedIn())
}

func TestRegister_ValidationStopsBeforeServer(t *testing.T) {
	svc := &fakeAuthService{}
	a, out := newTestApp(t, svc, "ada@example.com\nshort\nshort\nAda\nLovelace\n")

	err := a.Register(context.Background())
	require.ErrorIs(t, err, common.ErrPasswordTooShort)
	assert.Zero(t, svc.RegisterCalls)
	assert.Contains(t, out.String(), "  ! "+common.ErrPasswordTooShort.Error())
	assert.Contains(t, out.String(), "Registration failed: "+common.ErrPasswordTooShort.Error())
}

func TestRegister_MismatchEchoed(t *testing.T) {
	svc := &fakeAuthService{}
	a, out := newTestApp(t, svc, "ada@example.com\nlongpassword\nlongpassworx\nAda\nLovelace\n")

	err := a.Register(context.Background())
	require.ErrorIs(t, err, common.ErrPasswordMismatch)
	assert.Contains(t, out.String(), "  ! "+common.ErrPasswordMismatch.Error())
}

func TestRegister_ServerRejects(t *testing.T) {
	svc := &fakeAuthService{RegisterErr: &client.RejectedError{Message: common.ErrEmailTaken.Message}}
	a, out := newTestApp(t, svc, "ada@example.com\nlongpassword\nlongpassword\nAda\nLovelace\n")

	err := a.Register(context.Background())
	require.Error(t, err)
	assert.Contains(t, out.String(), "Registration failed: "+common.ErrEmailTaken.Message)
}

func TestRegister_InputEOF(t *testing.T) {
	svc := &fakeAuthService{}
	a, _ := newTestApp(t, svc, "ada@example.com\n")

	require.Error(t, a.Register(context.Background()))
	assert.Zero(t, svc.RegisterCalls)
}

// ---- Login ----

func TestLogin_Success(t *testing.T) {
	svc := &fakeAuthService{Session: &models.Session{Token: "tok", Email: "ada@example.com", User: testUser()}}
	a, out := newTestApp(t, svc, "ada@example.com\nlongpassword\n")

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(ada@example.com)", a.status())
	assert.Equal(t, "longpassword", svc.LastLogin.Password)
	assert.Contains(t, out.String(), "Welcome, Ada!")
}

func TestLogin_WelcomeFallsBackToEmail(t *testing.T) {
	svc := &fakeAuthService{Session: &models.Session{Token: "tok", Email: "ada@example.com"}}
	a, out := newTestApp(t, svc, "ada@example.com\nlongpassword\n")

	require.NoError(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), "Welcome, ada@example.com!")
}

func TestLogin_MissingCredentials(t *testing.T) {
	svc := &fakeAuthService{}
	a, out := newTestApp(t, svc, "\n\n")

	err := a.Login(context.Background())
	require.ErrorIs(t, err, common.ErrMissingCredentials)
	assert.Zero(t, svc.LoginCalls)
	assert.Contains(t, out.String(), "Login failed: "+common.ErrMissingCredentials.Error())
}

func TestLogin_Rejected(t *testing.T) {
	svc := &fakeAuthService{LoginErr: &client.RejectedError{Message: common.ErrInvalidCredentials.Message}}
	a, out := newTestApp(t, svc, "ada@example.com\nwrongpassword\n")

	require.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Login failed: Invalid email or password")
}

// ---- WhoAmI ----

func TestWhoAmI_Success(t *testing.T) {
	svc := &fakeAuthService{User: testUser()}
	a, out := newTestApp(t, svc, "")

	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "Ada Lovelace <ada@example.com>")
	assert.Contains(t, out.String(), "member since 2024-03-09")
}

func TestWhoAmI_NotLoggedIn(t *testing.T) {
	svc := &fakeAuthService{WhoAmIErr: client.ErrNotLoggedIn}
	a, out := newTestApp(t, svc, "")

	require.ErrorIs(t, a.WhoAmI(context.Background()), client.ErrNotLoggedIn)
	assert.Contains(t, out.String(), "Not logged in")
}

func TestWhoAmI_RejectedEndsSession(t *testing.T) {
	svc := &fakeAuthService{WhoAmIErr: &client.RejectedError{Message: common.ErrInvalidToken.Message}}
	a, out := newTestApp(t, svc, "")
	a.session = &models.Session{Token: "tok", Email: "ada@example.com"}

	require.Error(t, a.WhoAmI(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Session ended: Invalid or expired token")
}

func TestWhoAmI_Unavailable(t *testing.T) {
	svc := &fakeAuthService{WhoAmIErr: client.ErrUnavailable}
	a, out := newTestApp(t, svc, "")
	a.session = &models.Session{Token: "tok", Email: "ada@example.com"}

	require.Error(t, a.WhoAmI(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Could not verify session: ")
}

// ---- Logout ----

func TestLogout(t *testing.T) {
	svc := &fakeAuthService{}
	a, out := newTestApp(t, svc, "")
	a.session = &models.Session{Token: "tok", Email: "ada@example.com"}

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.status())
	assert.Contains(t, out.String(), "Logged out\n")
}

func TestLogout_ServerErrorStillClears(t *testing.T) {
	svc := &fakeAuthService{LogoutErr: client.ErrUnavailable}
	a, out := newTestApp(t, svc, "")
	a.session = &models.Session{Token: "tok", Email: "ada@example.com"}

	require.ErrorIs(t, a.Logout(context.Background()), client.ErrUnavailable)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Logged out locally: ")
}

// ---- restore ----

func TestRestore(t *testing.T) {
	svc := &fakeAuthService{Session: &models.Session{Token: "tok", Email: "ada@example.com"}}
	a, _ := newTestApp(t, svc, "")

	require.NoError(t, a.restore(context.Background()))
	assert.True(t, a.isLoggedIn())
}

func TestRestore_NotLoggedInIsNotAnError(t *testing.T) {
	a, _ := newTestApp(t, &fakeAuthService{}, "")

	require.NoError(t, a.restore(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestRestore_Error(t *testing.T) {
	boom := errors.New("disk")
	a, _ := newTestApp(t, &fakeAuthService{RestoreErr: boom}, "")

	require.ErrorIs(t, a.restore(context.Background()), boom)
}
