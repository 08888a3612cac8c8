package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrijs2005/tripauth/internal/kv"
	"github.com/dmitrijs2005/tripauth/internal/server/models"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockBackend) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockBackend) Update(ctx context.Context, fn func(ctx context.Context, tx kv.Store) error) error {
	return m.Called(ctx, fn).Error(0)
}

func (m *mockBackend) Close() error {
	return m.Called().Error(0)
}

// modelsUser builds a bare user for minting tokens outside the service.
type modelsUser struct {
	PublicID string
	Email    string
}

func (u modelsUser) user() *models.User {
	return &models.User{PublicID: u.PublicID, Email: u.Email}
}
