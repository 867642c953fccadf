// Package blogs stores blog posts. Every read resolves the author name.
//
// Update and Delete load the current record, hand it to a callback that may
// veto the change (ownership) or mutate it (patch), and then persist. The
// callback's error is returned unchanged.
package blogs

import (
	"context"

	"github.com/dmitrijs2005/docblog/internal/server/models"
)

// MutateFunc inspects, and for Update modifies, the loaded blog.
type MutateFunc func(b *models.Blog) error

type Repository interface {
	Create(ctx context.Context, blog *models.Blog) (*models.Blog, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Blog, error)
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	Update(ctx context.Context, id string, fn MutateFunc) (*models.Blog, error)
	Delete(ctx context.Context, id string, fn MutateFunc) (*models.Blog, error)
}
