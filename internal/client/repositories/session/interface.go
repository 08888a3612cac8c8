// Package session stores the client's persisted login state: the token,
// the email and the serialized user, each under its own key.
package session

import "context"

type Repository interface {
	// Get returns common.ErrorNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	// Delete succeeds when key is absent.
	Delete(ctx context.Context, key string) error
}
