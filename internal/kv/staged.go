package kv

import "context"

// stagedTx buffers writes over a base store until commit. Backends without
// native transactions use it under their own lock.
type stagedTx struct {
	base   Store
	writes map[string]string
}

func newStagedTx(base Store) *stagedTx {
	return &stagedTx{base: base, writes: make(map[string]string)}
}

func (t *stagedTx) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := t.writes[key]; ok {
		return v, true, nil
	}
	return t.base.Get(ctx, key)
}

func (t *stagedTx) Set(_ context.Context, key, value string) error {
	t.writes[key] = value
	return nil
}

func (t *stagedTx) commit(ctx context.Context) error {
	for k, v := range t.writes {
		if err := t.base.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
