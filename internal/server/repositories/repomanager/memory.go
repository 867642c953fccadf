package repomanager

import (
	"context"

	"github.com/dmitrijs2005/docblog/internal/server/repositories/blogs"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/users"
)

// MemoryRepositoryManager holds everything in process memory. Data is lost
// on exit.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
	blogs *blogs.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	u := users.NewMemoryRepository()
	return &MemoryRepositoryManager{users: u, blogs: blogs.NewMemoryRepository(u)}
}

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }
func (m *MemoryRepositoryManager) Blogs() blogs.Repository { return m.blogs }

func (m *MemoryRepositoryManager) Ping(ctx context.Context) error  { return ctx.Err() }
func (m *MemoryRepositoryManager) Close(ctx context.Context) error { return nil }
