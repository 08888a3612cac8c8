// Package services contains application services for the tripauth client.
// The auth service talks to the server and keeps the login state in the
// local session file under three keys: the token, the email and the user.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tripauth/internal/client/client"
	"github.com/dmitrijs2005/tripauth/internal/client/models"
	"github.com/dmitrijs2005/tripauth/internal/client/repositories/session"
	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/dbx"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create an account on the server. No session is stored.
//   - Login: authenticate and persist the session.
//   - Restore: read the persisted session without contacting the server.
//   - WhoAmI: verify the persisted token with the server.
//   - Logout: end the session on the server and clear the persisted keys.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Register(ctx context.Context, form validation.RegistrationForm) (*models.User, error)
	Login(ctx context.Context, form validation.LoginForm) (*models.Session, error)
	Restore(ctx context.Context) (*models.Session, error)
	WhoAmI(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var sessionKeys = []string{common.ClientTokenKey, common.ClientEmailKey, common.ClientUserKey}

type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) Register(ctx context.Context, form validation.RegistrationForm) (*models.User, error) {
	return a.client.Register(ctx, form)
}

func (a *authService) Login(ctx context.Context, form validation.LoginForm) (*models.Session, error) {
	user, token, err := a.client.Login(ctx, form)
	if err != nil {
		return nil, err
	}

	s := &models.Session{Token: token, Email: validation.NormalizeEmail(form.Email), User: user}
	if err := a.save(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return s, nil
}

// save persists the three session keys in one transaction.
func (a *authService) save(ctx context.Context, s *models.Session) error {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := session.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.ClientTokenKey, s.Token); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.ClientEmailKey, s.Email); err != nil {
			return err
		}
		return repo.Set(ctx, common.ClientUserKey, string(userJSON))
	})
}

// Restore returns client.ErrNotLoggedIn when no token is stored. A missing
// or unreadable user record does not invalidate the token.
func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	repo := session.NewSQLiteRepository(a.db)

	token, err := repo.Get(ctx, common.ClientTokenKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, client.ErrNotLoggedIn
		}
		return nil, err
	}

	s := &models.Session{Token: token}

	email, err := repo.Get(ctx, common.ClientEmailKey)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	s.Email = email

	raw, err := repo.Get(ctx, common.ClientUserKey)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if raw != "" {
		var u models.User
		if json.Unmarshal([]byte(raw), &u) == nil {
			s.User = &u
		}
	}
	return s, nil
}

// WhoAmI verifies the stored token. When the server rejects it the stale
// session is cleared and the rejection is returned.
func (a *authService) WhoAmI(ctx context.Context) (*models.User, error) {
	s, err := a.Restore(ctx)
	if err != nil {
		return nil, err
	}

	user, err := a.client.VerifyToken(ctx, s.Token)
	if err != nil {
		var rej *client.RejectedError
		if errors.As(err, &rej) {
			if cerr := a.clear(ctx); cerr != nil {
				return nil, cerr
			}
		}
		return nil, err
	}
	return user, nil
}

// Logout ends the server session and always clears the local keys. A
// server error is returned after the keys are gone.
func (a *authService) Logout(ctx context.Context) error {
	s, err := a.Restore(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotLoggedIn) {
			return a.clear(ctx)
		}
		return err
	}

	serverErr := a.client.Logout(ctx, s.Token)
	if err := a.clear(ctx); err != nil {
		return err
	}
	return serverErr
}

func (a *authService) clear(ctx context.Context) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := session.NewSQLiteRepository(tx)
		for _, k := range sessionKeys {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
