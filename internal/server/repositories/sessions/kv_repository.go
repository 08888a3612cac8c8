package sessions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/kv"
)

type KVRepository struct {
	store kv.Store
}

func NewKVRepository(store kv.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) load(ctx context.Context) (map[string]string, error) {
	raw, ok, err := r.store.Get(ctx, common.SessionsKey)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	m := make(map[string]string)
	if !ok || raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return m, nil
}

func (r *KVRepository) save(ctx context.Context, m map[string]string) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := r.store.Set(ctx, common.SessionsKey, string(b)); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

func (r *KVRepository) Set(ctx context.Context, token, userID string) error {
	m, err := r.load(ctx)
	if err != nil {
		return err
	}
	m[token] = userID
	return r.save(ctx, m)
}

func (r *KVRepository) Get(ctx context.Context, token string) (string, error) {
	m, err := r.load(ctx)
	if err != nil {
		return "", err
	}
	userID, ok := m[token]
	if !ok {
		return "", common.ErrorNotFound
	}
	return userID, nil
}

func (r *KVRepository) Delete(ctx context.Context, token string) error {
	m, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := m[token]; !ok {
		return nil
	}
	delete(m, token)
	return r.save(ctx, m)
}

func (r *KVRepository) DeleteWhere(ctx context.Context, match func(token, userID string) bool) (int, error) {
	m, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for token, userID := range m {
		if match(token, userID) {
			delete(m, token)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, r.save(ctx, m)
}
