package client

import (
	"context"
)

// Client is the blog API as seen by blogctl.
type Client interface {
	Register(ctx context.Context, name, email string, password []byte) (*AuthResult, error)
	Login(ctx context.Context, email string, password []byte) (*AuthResult, error)
	Me(ctx context.Context, token string) (*User, error)
	ListBlogs(ctx context.Context, featuredOnly bool) ([]Blog, error)
	GetBlog(ctx context.Context, id string) (*Blog, error)
	CreateBlog(ctx context.Context, token string, in BlogInput) (*Blog, error)
	UpdateBlog(ctx context.Context, token, id string, in BlogPatch) (*Blog, error)
	DeleteBlog(ctx context.Context, token, id string) error
	Ping(ctx context.Context) error
}
