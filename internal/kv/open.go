package kv

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/tripauth/internal/common"
)

// Open picks a backend from the DSN scheme.
func Open(ctx context.Context, dsn string, s3opts S3Options) (Backend, error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedBackend, dsn)
	}

	switch scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "file":
		if rest == "" {
			return nil, fmt.Errorf("sqlite dsn %q: empty path", dsn)
		}
		return OpenSQLite(ctx, rest)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, dsn)
	case "s3":
		u, err := url.Parse(dsn)
		if err != nil {
			return nil, fmt.Errorf("s3 dsn: %w", err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("s3 dsn %q: missing bucket", dsn)
		}
		return OpenS3(ctx, u.Host, u.Path, s3opts)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedBackend, scheme)
	}
}
