package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/cryptox"
	"github.com/dmitrijs2005/tripauth/internal/kv"
	"github.com/dmitrijs2005/tripauth/internal/logging"
	"github.com/dmitrijs2005/tripauth/internal/server/auth"
	"github.com/dmitrijs2005/tripauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tripauth/internal/telemetry"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

var cheapHash = cryptox.Params{Time: 1, MemoryKiB: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc   *AuthService
	store *kv.MemoryStore
	repos repomanager.RepositoryManager
	clock *fakeClock
}

func newFixture(t *testing.T, format string, opts ...Option) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	codec, err := auth.NewCodec(format, []byte("test-secret"), auth.DefaultValidity, clock.Now)
	require.NoError(t, err)

	store := kv.NewMemoryStore()
	repos := repomanager.NewKVRepositoryManager()
	base := []Option{WithLatency(0), WithHashParams(cheapHash), WithClock(clock.Now)}
	svc := NewAuthService(store, repos, codec, logging.Nop{}, append(base, opts...)...)
	return &fixture{svc: svc, store: store, repos: repos, clock: clock}
}

func anaForm() validation.RegistrationForm {
	return validation.RegistrationForm{
		Email:           "a@b.com",
		Password:        "password1",
		ConfirmPassword: "password1",
		FirstName:       "Ana",
		LastName:        "Ruiz",
	}
}

func (f *fixture) userCount(t *testing.T) int {
	t.Helper()
	n, err := f.repos.Users(f.store).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestAuthService_EndToEnd(t *testing.T) {
	for _, format := range []string{auth.FormatJWT, auth.FormatLegacy} {
		t.Run(format, func(t *testing.T) {
			f := newFixture(t, format)
			ctx := context.Background()

			u, err := f.svc.Register(ctx, anaForm())
			require.NoError(t, err)
			assert.Equal(t, "a@b.com", u.Email)
			assert.NotEmpty(t, u.PublicID)

			res, err := f.svc.Login(ctx, validation.LoginForm{Email: "A@B.com", Password: "password1"})
			require.NoError(t, err)
			require.NotEmpty(t, res.Token)
			assert.Equal(t, u.PublicID, res.User.PublicID)

			got, err := f.svc.VerifyToken(ctx, res.Token)
			require.NoError(t, err)
			assert.Equal(t, "a@b.com", got.Email)

			require.NoError(t, f.svc.Logout(ctx, res.Token))

			_, err = f.svc.VerifyToken(ctx, res.Token)
			assert.Same(t, common.ErrSessionNotFound, err)
		})
	}
}

func TestAuthService_RegisterDoesNotCreateSession(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)
	_, err := f.svc.Register(context.Background(), anaForm())
	require.NoError(t, err)

	_, ok, err := f.store.Get(context.Background(), common.SessionsKey)
	require.NoError(t, err)
	assert.False(t, ok)

	raw, _, _ := f.store.Get(context.Background(), common.UsersKey)
	assert.NotContains(t, raw, "password1", "raw password is never stored")
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, anaForm())
	require.NoError(t, err)

	dup := anaForm()
	dup.Email = "  A@B.COM "
	_, err = f.svc.Register(ctx, dup)
	assert.Same(t, common.ErrEmailTaken, err)
	assert.Equal(t, 1, f.userCount(t))
}

func TestAuthService_RegisterValidationRunsBeforeStore(t *testing.T) {
	backend := &mockBackend{}
	codec := auth.NewJWTCodec([]byte("k"), time.Hour, nil)
	svc := NewAuthService(backend, repomanager.NewKVRepositoryManager(), codec, logging.Nop{}, WithLatency(0), WithHashParams(cheapHash))

	form := anaForm()
	form.Password, form.ConfirmPassword = "abc", "xyz"
	_, err := svc.Register(context.Background(), form)

	assert.Same(t, common.ErrPasswordMismatch, err)
	backend.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	backend.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestAuthService_ConcurrentRegistrationsSameEmail(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)
	ctx := context.Background()

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Register(ctx, anaForm()); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, f.userCount(t))
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, anaForm())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, validation.LoginForm{Email: "a@b.com"})
	assert.Same(t, common.ErrMissingCredentials, err)

	_, err = f.svc.Login(ctx, validation.LoginForm{Email: "ghost@b.com", Password: "password1"})
	assert.Same(t, common.ErrInvalidCredentials, err)

	_, err = f.svc.Login(ctx, validation.LoginForm{Email: "a@b.com", Password: "password2"})
	assert.Same(t, common.ErrInvalidCredentials, err, "wrong password looks like unknown email")

	sessions, _, _ := f.store.Get(ctx, common.SessionsKey)
	assert.Empty(t, sessions)
}

func TestAuthService_LegacyPasswordCheck(t *testing.T) {
	f := newFixture(t, auth.FormatLegacy, WithLegacyPasswordCheck(true))
	ctx := context.Background()
	_, err := f.svc.Register(ctx, anaForm())
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, validation.LoginForm{Email: "a@b.com", Password: "anything"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = f.svc.Login(ctx, validation.LoginForm{Email: "a@b.com", Password: "12345"})
	assert.Same(t, common.ErrInvalidCredentials, err)
}

func TestAuthService_TokenExpires(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, anaForm())
	require.NoError(t, err)
	res, err := f.svc.Login(ctx, validation.LoginForm{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	_, err = f.svc.VerifyToken(ctx, res.Token)
	require.NoError(t, err)

	f.clock.Advance(auth.DefaultValidity + time.Second)
	_, err = f.svc.VerifyToken(ctx, res.Token)
	assert.Same(t, common.ErrInvalidToken, err)
}

func TestAuthService_VerifyMalformed(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)

	require.NotPanics(t, func() {
		_, err := f.svc.VerifyToken(context.Background(), "not-a-real-token")
		assert.Same(t, common.ErrInvalidToken, err)
	})
}

func TestAuthService_VerifyUserNotFound(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)
	ctx := context.Background()

	orphan, err := f.svc.codec.Mint(modelsUser{PublicID: "gone", Email: "gone@b.com"}.user())
	require.NoError(t, err)
	require.NoError(t, f.repos.Sessions(f.store).Set(ctx, orphan, "gone"))

	_, err = f.svc.VerifyToken(ctx, orphan)
	assert.Same(t, common.ErrUserNotFound, err)
}

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)
	ctx := context.Background()

	assert.NoError(t, f.svc.Logout(ctx, "never-issued"))
	assert.NoError(t, f.svc.Logout(ctx, "never-issued"))
}

func TestAuthService_StoreFailureIsGeneric(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Update", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	backend.On("Get", mock.Anything, common.UsersKey).Return("", false, errors.New("disk full"))
	backend.On("Get", mock.Anything, common.SessionsKey).Return("", false, errors.New("disk full"))

	codec := auth.NewJWTCodec([]byte("k"), time.Hour, nil)
	svc := NewAuthService(backend, repomanager.NewKVRepositoryManager(), codec, logging.Nop{}, WithLatency(0), WithHashParams(cheapHash))
	ctx := context.Background()

	_, err := svc.Register(ctx, anaForm())
	assert.Same(t, common.ErrRegistrationFailed, err)

	_, err = svc.Login(ctx, validation.LoginForm{Email: "a@b.com", Password: "password1"})
	assert.Same(t, common.ErrLoginFailed, err)

	tok, _ := codec.Mint(modelsUser{PublicID: "p"}.user())
	_, err = svc.VerifyToken(ctx, tok)
	assert.Same(t, common.ErrVerificationFailed, err)

	assert.Same(t, common.ErrLogoutFailed, svc.Logout(ctx, tok))
}

func TestAuthService_SimulatedLatency(t *testing.T) {
	f := newFixture(t, auth.FormatJWT, WithLatency(30*time.Millisecond))

	start := time.Now()
	require.NoError(t, f.svc.Logout(context.Background(), "t"))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Same(t, common.ErrLogoutFailed, f.svc.Logout(ctx, "t"), "cancelled wait settles with a failure")
}

func TestAuthService_SweepExpiredSessions(t *testing.T) {
	f := newFixture(t, auth.FormatJWT)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, anaForm())
	require.NoError(t, err)

	old, err := f.svc.Login(ctx, validation.LoginForm{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	f.clock.Advance(auth.DefaultValidity - time.Hour)
	fresh, err := f.svc.Login(ctx, validation.LoginForm{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)

	n, err := f.svc.SweepExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.repos.Sessions(f.store).Get(ctx, old.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = f.svc.VerifyToken(ctx, fresh.Token)
	assert.NoError(t, err)
}

func TestAuthService_RecordsMetrics(t *testing.T) {
	p, err := telemetry.NewProvider(context.Background(), "test", "")
	require.NoError(t, err)
	m, err := telemetry.NewMetrics(p.Meter())
	require.NoError(t, err)

	f := newFixture(t, auth.FormatJWT, WithMetrics(m), WithTracer(p.Tracer()))
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, anaForm())
	_, _ = f.svc.VerifyToken(ctx, "bogus")

	rm, err := p.Collect(ctx)
	require.NoError(t, err)

	var ok, failed bool
	for _, pt := range telemetry.Summarize(rm) {
		if pt.Name != "tripauth.auth.operations" {
			continue
		}
		if pt.Attributes["operation"] == "register" && pt.Attributes["outcome"] == telemetry.OutcomeSuccess {
			ok = true
		}
		if pt.Attributes["operation"] == "verify_token" && pt.Attributes["kind"] == string(common.KindInvalidToken) {
			failed = true
		}
	}
	assert.True(t, ok)
	assert.True(t, failed)
}
