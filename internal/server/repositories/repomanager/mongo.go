package repomanager

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docblog/internal/server/repositories/blogs"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// defaultMongoDatabase is used when the DSN names no database.
const defaultMongoDatabase = "docblog"

type MongoRepositoryManager struct {
	client *mongo.Client
	users  *users.MongoRepository
	blogs  *blogs.MongoRepository
}

// mongoConnect is a seam for tests.
var mongoConnect = func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts...)
}

// NewMongoRepositoryManager connects, pings the primary and creates the
// indexes the repositories rely on.
func NewMongoRepositoryManager(ctx context.Context, dsn string, connectTimeout time.Duration) (*MongoRepositoryManager, error) {
	cs, err := connstring.ParseAndValidate(dsn)
	if err != nil {
		return nil, fmt.Errorf("mongo dsn error: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	opts := options.Client().
		ApplyURI(dsn).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongoConnect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	m := NewMongoRepositoryManagerFor(client.Database(dbName))

	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}
	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return m, nil
}

// NewMongoRepositoryManagerFor wraps an already connected database.
func NewMongoRepositoryManagerFor(db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client: db.Client(),
		users:  users.NewMongoRepository(db),
		blogs:  blogs.NewMongoRepository(db),
	}
}

func (m *MongoRepositoryManager) EnsureIndexes(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.blogs.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MongoRepositoryManager) Blogs() blogs.Repository {
	return m.blogs
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
