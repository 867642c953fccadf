package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/docblog/internal/logging"
	"github.com/dmitrijs2005/docblog/internal/server/config"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/blogs"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.StoreOperationTimeout = time.Second
	return cfg
}

// fakeRepoManager lets a test swap either repository.
type fakeRepoManager struct {
	u users.Repository
	b blogs.Repository
}

func (m *fakeRepoManager) Users() users.Repository     { return m.u }
func (m *fakeRepoManager) Blogs() blogs.Repository     { return m.b }
func (m *fakeRepoManager) Ping(context.Context) error  { return nil }
func (m *fakeRepoManager) Close(context.Context) error { return nil }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

// blockingBlogs stalls every call until ctx is done.
type blockingBlogs struct{ blogs.Repository }

func (blockingBlogs) List(ctx context.Context, _ models.ListFilter) ([]*models.Blog, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// failingUsers returns err from every call.
type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, f.err }
func (f failingUsers) GetByEmail(context.Context, string) (*models.User, error)   { return nil, f.err }
func (f failingUsers) GetByID(context.Context, string) (*models.User, error)      { return nil, f.err }

func newUserService(t *testing.T, m repomanager.RepositoryManager) *UserService {
	t.Helper()
	return NewUserService(m, testConfig(), logging.Nop{})
}
