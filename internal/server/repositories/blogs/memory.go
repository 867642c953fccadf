package blogs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/google/uuid"
)

// AuthorLookup resolves author names for the memory backend.
type AuthorLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type memoryEntry struct {
	blog *models.Blog
	seq  uint64
}

// MemoryRepository keeps blogs in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	authors AuthorLookup
	items   map[string]*memoryEntry
	seq     uint64
}

func NewMemoryRepository(authors AuthorLookup) *MemoryRepository {
	return &MemoryRepository{
		authors: authors,
		items:   make(map[string]*memoryEntry),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := cloneBlog(blog)
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	r.mu.Lock()
	r.seq++
	r.items[b.ID] = &memoryEntry{blog: b, seq: r.seq}
	r.mu.Unlock()

	return r.withAuthor(ctx, cloneBlog(b)), nil
}

func (r *MemoryRepository) List(ctx context.Context, filter models.ListFilter) ([]*models.Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.items))
	for _, e := range r.items {
		if filter.FeaturedOnly && !e.blog.Featured {
			continue
		}
		entries = append(entries, memoryEntry{blog: cloneBlog(e.blog), seq: e.seq})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.blog.CreatedAt.Equal(b.blog.CreatedAt) {
			return a.blog.CreatedAt.After(b.blog.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*models.Blog, 0, len(entries))
	for _, e := range entries {
		result = append(result, r.withAuthor(ctx, e.blog))
	}
	return result, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	e, ok := r.items[id]
	var b *models.Blog
	if ok {
		b = cloneBlog(e.blog)
	}
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.withAuthor(ctx, b), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn MutateFunc) (*models.Blog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	e, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return nil, common.ErrorNotFound
	}

	b := cloneBlog(e.blog)
	if err := fn(b); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	// Identity and ownership are not for the callback to change.
	b.ID, b.AuthorID, b.CreatedAt = e.blog.ID, e.blog.AuthorID, e.blog.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	e.blog = cloneBlog(b)
	r.mu.Unlock()

	return r.withAuthor(ctx, b), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string, fn MutateFunc) (*models.Blog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	b := cloneBlog(e.blog)
	if err := fn(b); err != nil {
		return nil, err
	}
	delete(r.items, id)

	return cloneBlog(e.blog), nil
}

func (r *MemoryRepository) withAuthor(ctx context.Context, b *models.Blog) *models.Blog {
	if r.authors == nil {
		return b
	}
	if u, err := r.authors.GetByID(ctx, b.AuthorID); err == nil {
		b.AuthorName = u.Name
	}
	return b
}

func cloneBlog(b *models.Blog) *models.Blog {
	c := *b
	if b.Image != nil {
		img := *b.Image
		img.Data = append([]byte(nil), b.Image.Data...)
		c.Image = &img
	}
	return &c
}
