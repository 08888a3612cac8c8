package client

import (
	"context"

	"github.com/dmitrijs2005/tripauth/internal/client/models"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

type Client interface {
	Close() error
	Register(ctx context.Context, form validation.RegistrationForm) (*models.User, error)
	Login(ctx context.Context, form validation.LoginForm) (*models.User, string, error)
	VerifyToken(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}
