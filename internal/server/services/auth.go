// Package services contains server-side business logic. AuthService
// implements the four auth operations over the credential store, the
// session store and a token codec.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/cryptox"
	"github.com/dmitrijs2005/tripauth/internal/kv"
	"github.com/dmitrijs2005/tripauth/internal/logging"
	"github.com/dmitrijs2005/tripauth/internal/server/auth"
	"github.com/dmitrijs2005/tripauth/internal/server/models"
	"github.com/dmitrijs2005/tripauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tripauth/internal/telemetry"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

// Authenticator is what the transports need from the auth service.
// Every returned error is a *common.Failure.
type Authenticator interface {
	Register(ctx context.Context, form validation.RegistrationForm) (*models.PublicUser, error)
	Login(ctx context.Context, form validation.LoginForm) (*LoginResult, error)
	VerifyToken(ctx context.Context, token string) (*models.PublicUser, error)
	Logout(ctx context.Context, token string) error
}

// LoginResult is the user record and the freshly minted token.
type LoginResult struct {
	User  *models.PublicUser
	Token string
}

// DefaultLatency is the simulated round-trip applied before every operation.
const DefaultLatency = 300 * time.Millisecond

type AuthService struct {
	store   kv.Backend
	repos   repomanager.RepositoryManager
	codec   auth.Codec
	logger  logging.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	now     auth.Clock

	latency             time.Duration
	legacyPasswordCheck bool
	hashParams          cryptox.Params
}

type Option func(*AuthService)

// WithLatency sets the simulated delay. Zero disables it.
func WithLatency(d time.Duration) Option {
	return func(s *AuthService) { s.latency = d }
}

// WithLegacyPasswordCheck makes login accept any password of at least six
// characters for a known email, as the browser-only mock did.
func WithLegacyPasswordCheck(on bool) Option {
	return func(s *AuthService) { s.legacyPasswordCheck = on }
}

func WithHashParams(p cryptox.Params) Option {
	return func(s *AuthService) { s.hashParams = p }
}

func WithClock(now auth.Clock) Option {
	return func(s *AuthService) { s.now = now }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *AuthService) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *AuthService) { s.tracer = t }
}

func NewAuthService(store kv.Backend, repos repomanager.RepositoryManager, codec auth.Codec, logger logging.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		store:      store,
		repos:      repos,
		codec:      codec,
		logger:     logger.With("module", "auth_service"),
		tracer:     noop.NewTracerProvider().Tracer(""),
		now:        time.Now,
		latency:    DefaultLatency,
		hashParams: cryptox.DefaultParams,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the form, checks that the email is free and stores
// the new account. No session is created.
func (s *AuthService) Register(ctx context.Context, form validation.RegistrationForm) (u *models.PublicUser, err error) {
	ctx, done := s.begin(ctx, "register", &err, common.ErrRegistrationFailed)
	defer done()

	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if err := validation.Register(form); err != nil {
		return nil, err
	}

	id, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           id,
		PublicID:     uuid.NewString(),
		Email:        validation.NormalizeEmail(form.Email),
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		CreatedAt:    s.now().UTC(),
		PasswordHash: cryptox.HashPassword(form.Password, s.hashParams),
	}

	err = s.store.Update(ctx, func(ctx context.Context, tx kv.Store) error {
		repo := s.repos.Users(tx)

		_, err := repo.FindByEmail(ctx, user.Email)
		if err == nil {
			return common.ErrEmailTaken
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return repo.Insert(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "public_id", user.PublicID)
	return user.Public(), nil
}

// Login checks the credentials, mints a token and records the session.
// Unknown email and wrong password give the same failure.
func (s *AuthService) Login(ctx context.Context, form validation.LoginForm) (res *LoginResult, err error) {
	ctx, done := s.begin(ctx, "login", &err, common.ErrLoginFailed)
	defer done()

	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if err := validation.Login(form); err != nil {
		return nil, err
	}

	user, err := s.repos.Users(s.store).FindByEmail(ctx, validation.NormalizeEmail(form.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.checkPassword(user, form.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.codec.Mint(user)
	if err != nil {
		return nil, err
	}

	err = s.store.Update(ctx, func(ctx context.Context, tx kv.Store) error {
		return s.repos.Sessions(tx).Set(ctx, token, user.PublicID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "public_id", user.PublicID)
	return &LoginResult{User: user.Public(), Token: token}, nil
}

func (s *AuthService) checkPassword(user *models.User, password string) (bool, error) {
	if s.legacyPasswordCheck {
		return len([]rune(password)) >= validation.MinLegacyPasswordLength, nil
	}
	return cryptox.VerifyPassword(user.PasswordHash, password)
}

// VerifyToken resolves a token to its user through the session store.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (u *models.PublicUser, err error) {
	ctx, done := s.begin(ctx, "verify_token", &err, common.ErrVerificationFailed)
	defer done()

	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	if !s.codec.Parse(token).Valid {
		return nil, common.ErrInvalidToken
	}

	userID, err := s.repos.Sessions(s.store).Get(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSessionNotFound
		}
		return nil, err
	}

	user, err := s.repos.Users(s.store).FindByPublicID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	return user.Public(), nil
}

// Logout forgets the session of token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	ctx, done := s.begin(ctx, "logout", &err, common.ErrLogoutFailed)
	defer done()

	if err := s.delay(ctx); err != nil {
		return err
	}

	return s.store.Update(ctx, func(ctx context.Context, tx kv.Store) error {
		return s.repos.Sessions(tx).Delete(ctx, token)
	})
}

// SweepExpiredSessions removes every session whose token no longer
// validates. It is not part of the public contract and skips the delay.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int, error) {
	var removed int
	err := s.store.Update(ctx, func(ctx context.Context, tx kv.Store) error {
		n, err := s.repos.Sessions(tx).DeleteWhere(ctx, func(token, _ string) bool {
			return !s.codec.Parse(token).Valid
		})
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordSwept(ctx, removed)
	return removed, nil
}

func (s *AuthService) delay(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(s.latency)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// begin opens a span for op and returns the function that closes it. The
// closer rewrites *errp: failures pass through, anything else is logged
// and replaced with fallback.
func (s *AuthService) begin(ctx context.Context, op string, errp *error, fallback *common.Failure) (context.Context, func()) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "auth."+op)

	return ctx, func() {
		kind := ""
		if *errp != nil {
			f := common.AsFailure(*errp, fallback)
			if f == fallback {
				s.logger.Error(ctx, op+" failed", "error", (*errp).Error())
				span.RecordError(*errp)
			}
			*errp = f
			kind = string(f.Kind)
			span.SetStatus(codes.Error, f.Message)
			span.SetAttributes(attribute.String("failure.kind", kind))
		}
		s.metrics.RecordOperation(ctx, op, kind, time.Since(start))
		span.End()
	}
}
