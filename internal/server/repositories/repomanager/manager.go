// Package repomanager opens the configured store and vends its
// repositories. The backend is chosen by the DSN scheme: postgres://,
// mongodb:// (or mongodb+srv://) and memory://.
package repomanager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docblog/internal/server/repositories/blogs"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Blogs() blogs.Repository
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the store named by dsn. The connection, initial ping and
// schema setup must finish within connectTimeout.
func Open(ctx context.Context, dsn string, connectTimeout time.Duration) (RepositoryManager, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch scheme(dsn) {
	case "postgres", "postgresql":
		return NewPostgresRepositoryManager(ctx, dsn)
	case "mongodb", "mongodb+srv":
		return NewMongoRepositoryManager(ctx, dsn, connectTimeout)
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported store dsn %q", redact(dsn))
	}
}

func scheme(dsn string) string {
	i := strings.Index(dsn, "://")
	if i < 0 {
		return ""
	}
	return strings.ToLower(dsn[:i])
}

// redact drops credentials before a dsn reaches an error message.
func redact(dsn string) string {
	i := strings.Index(dsn, "://")
	if i < 0 {
		return dsn
	}
	rest := dsn[i+3:]
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return dsn[:i+3] + "***@" + rest[at+1:]
	}
	return dsn
}
