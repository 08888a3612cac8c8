package users

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/kv"
	"github.com/dmitrijs2005/tripauth/internal/server/models"
)

type KVRepository struct {
	store kv.Store
}

func NewKVRepository(store kv.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) load(ctx context.Context) ([]models.User, error) {
	raw, ok, err := r.store.Get(ctx, common.UsersKey)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var list []models.User
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return list, nil
}

func (r *KVRepository) save(ctx context.Context, list []models.User) error {
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := r.store.Set(ctx, common.UsersKey, string(b)); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

func (r *KVRepository) find(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if match(&list[i]) {
			u := list[i]
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *KVRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(ctx, func(u *models.User) bool {
		return strings.ToLower(u.Email) == email
	})
}

func (r *KVRepository) FindByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool {
		return u.PublicID == publicID
	})
}

func (r *KVRepository) Insert(ctx context.Context, u *models.User) error {
	list, err := r.load(ctx)
	if err != nil {
		return err
	}
	return r.save(ctx, append(list, *u))
}

func (r *KVRepository) Count(ctx context.Context) (int, error) {
	list, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}
