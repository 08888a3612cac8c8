// Package sessions is the session store: issued tokens mapped to the public
// id of the user they were issued to, kept as one JSON object.
package sessions

import "context"

// Repository stores token -> user public id bindings.
type Repository interface {
	Set(ctx context.Context, token, userID string) error
	// Get returns common.ErrorNotFound for an unknown token.
	Get(ctx context.Context, token string) (string, error)
	// Delete is idempotent.
	Delete(ctx context.Context, token string) error
	// DeleteWhere removes every session for which match returns true and
	// reports how many were removed.
	DeleteWhere(ctx context.Context, match func(token, userID string) bool) (int, error)
}
