// Package common defines shared constants and sentinel errors used across
// client and server layers of tripauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Storage substrate errors.
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
	ErrStoreClosed        = errors.New("store closed")
)
