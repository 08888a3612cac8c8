// Package repomanager binds the credential and session stores to a
// persistence substrate, either the backend itself or the Store handed to
// an atomic update.
package repomanager

import (
	"github.com/dmitrijs2005/tripauth/internal/kv"
	"github.com/dmitrijs2005/tripauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/tripauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(s kv.Store) users.Repository
	Sessions(s kv.Store) sessions.Repository
}

// KVRepositoryManager vends the JSON-collection repositories.
type KVRepositoryManager struct{}

func NewKVRepositoryManager() *KVRepositoryManager {
	return &KVRepositoryManager{}
}

func (m *KVRepositoryManager) Users(s kv.Store) users.Repository {
	return users.NewKVRepository(s)
}

func (m *KVRepositoryManager) Sessions(s kv.Store) sessions.Repository {
	return sessions.NewKVRepository(s)
}
