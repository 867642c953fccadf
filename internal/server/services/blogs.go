package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/logging"
	"github.com/dmitrijs2005/docblog/internal/server/blobstore"
	"github.com/dmitrijs2005/docblog/internal/server/config"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/repomanager"
)

const minTitleLength = 3

// BlogInput is what a client supplies to create a blog.
type BlogInput struct {
	Title           string
	GoogleDriveLink string
	Image           *models.Image
}

// BlogService implements blog CRUD. Only the author of a blog may update
// or delete it.
type BlogService struct {
	repomanager   repomanager.RepositoryManager
	blobs         blobstore.Store
	documentHosts map[string]struct{}
	opTimeout     time.Duration
	logger        logging.Logger
}

// NewBlogService builds the service. blobs may be nil, in which case image
// bytes are stored inline with the blog.
func NewBlogService(m repomanager.RepositoryManager, blobs blobstore.Store, cfg *config.Config, logger logging.Logger) *BlogService {
	hosts := make(map[string]struct{}, len(cfg.DocumentHosts))
	for _, h := range cfg.DocumentHosts {
		hosts[strings.ToLower(h)] = struct{}{}
	}
	return &BlogService{
		repomanager:   m,
		blobs:         blobs,
		documentHosts: hosts,
		opTimeout:     cfg.StoreOperationTimeout,
		logger:        logger.With("module", "blogs"),
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < minTitleLength {
		return "", fmt.Errorf("%w: title must be at least %d characters", common.ErrValidation, minTitleLength)
	}
	return title, nil
}

func (s *BlogService) validateLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("%w: googleDriveLink is required", common.ErrValidation)
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", fmt.Errorf("%w: googleDriveLink must be an http(s) URL", common.ErrValidation)
	}
	if len(s.documentHosts) > 0 {
		if _, ok := s.documentHosts[strings.ToLower(u.Hostname())]; !ok {
			return "", fmt.Errorf("%w: googleDriveLink host %q is not allowed", common.ErrValidation, u.Hostname())
		}
	}
	return link, nil
}

func validateImage(img *models.Image) error {
	if img == nil {
		return nil
	}
	if len(img.Data) == 0 || img.ContentType == "" || img.Filename == "" {
		return fmt.Errorf("%w: incomplete image", common.ErrValidation)
	}
	return nil
}

// Create stores a new blog owned by ownerID.
func (s *BlogService) Create(ctx context.Context, ownerID string, in BlogInput) (*models.Blog, error) {
	if ownerID == "" {
		return nil, common.ErrAuthRequired
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	link, err := s.validateLink(in.GoogleDriveLink)
	if err != nil {
		return nil, err
	}
	if err := validateImage(in.Image); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	img, err := s.externalize(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	created, err := s.repomanager.Blogs().Create(ctx, &models.Blog{
		Title:           title,
		GoogleDriveLink: link,
		Image:           img,
		AuthorID:        ownerID,
	})
	if err != nil {
		s.dropBlob(ctx, img)
		return nil, mapStoreError(err)
	}

	if created.AuthorName == "" {
		if u, err := s.repomanager.Users().GetByID(ctx, ownerID); err == nil {
			created.AuthorName = u.Name
		}
	}
	created.Image = in.Image

	s.logger.Info(ctx, "blog created", "blog_id", created.ID, "author_id", ownerID)
	return created, nil
}

// List returns every blog, newest first.
func (s *BlogService) List(ctx context.Context, filter models.ListFilter) ([]*models.Blog, error) {
	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	list, err := s.repomanager.Blogs().List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err)
	}
	for _, b := range list {
		s.loadImage(ctx, b)
	}
	return list, nil
}

// GetByID returns one blog. Malformed ids fail with ErrInvalidID, missing
// ones with ErrorNotFound.
func (s *BlogService) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	b, err := s.repomanager.Blogs().GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.loadImage(ctx, b)
	return b, nil
}

// Update applies the set fields of patch to the blog if ownerID is its
// author.
func (s *BlogService) Update(ctx context.Context, id, ownerID string, patch models.BlogPatch) (*models.Blog, error) {
	if ownerID == "" {
		return nil, common.ErrAuthRequired
	}

	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	// Ownership is checked before the patch is validated or uploaded.
	current, err := s.repomanager.Blogs().GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if current.AuthorID != ownerID {
		return nil, common.ErrNotAuthorized
	}

	var title, link string
	if patch.Title != nil {
		if title, err = validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.GoogleDriveLink != nil {
		if link, err = s.validateLink(*patch.GoogleDriveLink); err != nil {
			return nil, err
		}
	}
	if err := validateImage(patch.Image); err != nil {
		return nil, err
	}
	if patch.Empty() {
		s.loadImage(ctx, current)
		return current, nil
	}

	newImg, err := s.externalize(ctx, patch.Image)
	if err != nil {
		return nil, err
	}

	var replaced *models.Image
	updated, err := s.repomanager.Blogs().Update(ctx, id, func(b *models.Blog) error {
		if b.AuthorID != ownerID {
			return common.ErrNotAuthorized
		}
		if patch.Title != nil {
			b.Title = title
		}
		if patch.GoogleDriveLink != nil {
			b.GoogleDriveLink = link
		}
		if newImg != nil {
			replaced = b.Image
			b.Image = newImg
		}
		return nil
	})
	if err != nil {
		s.dropBlob(ctx, newImg)
		return nil, mapStoreError(err)
	}
	s.dropBlob(ctx, replaced)

	if patch.Image != nil {
		updated.Image = patch.Image
	} else {
		s.loadImage(ctx, updated)
	}

	s.logger.Info(ctx, "blog updated", "blog_id", id, "author_id", ownerID)
	return updated, nil
}

// Delete removes the blog permanently if ownerID is its author. A blob
// store object is removed after the record.
func (s *BlogService) Delete(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return common.ErrAuthRequired
	}

	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	deleted, err := s.repomanager.Blogs().Delete(ctx, id, func(b *models.Blog) error {
		if b.AuthorID != ownerID {
			return common.ErrNotAuthorized
		}
		return nil
	})
	if err != nil {
		return mapStoreError(err)
	}
	s.dropBlob(ctx, deleted.Image)

	s.logger.Info(ctx, "blog deleted", "blog_id", id, "author_id", ownerID)
	return nil
}

// externalize uploads img to the blob store, if one is configured, and
// returns the record to persist.
func (s *BlogService) externalize(ctx context.Context, img *models.Image) (*models.Image, error) {
	if img == nil || s.blobs == nil {
		return img, nil
	}
	key := blobstore.NewKey(img.Filename)
	if err := s.blobs.Put(ctx, key, img.ContentType, img.Data); err != nil {
		return nil, mapStoreError(err)
	}
	return &models.Image{ContentType: img.ContentType, Filename: img.Filename, StorageKey: key}, nil
}

func (s *BlogService) dropBlob(ctx context.Context, img *models.Image) {
	if img == nil || img.StorageKey == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, img.StorageKey); err != nil {
		s.logger.Warn(ctx, "blob delete failed", "key", img.StorageKey, "error", err)
	}
}

// loadImage fills externalized image bytes. An image that cannot be loaded
// is dropped so clients never see a partial record.
func (s *BlogService) loadImage(ctx context.Context, b *models.Blog) {
	if b.Image == nil || b.Image.StorageKey == "" || len(b.Image.Data) > 0 {
		return
	}
	if s.blobs == nil {
		s.logger.Warn(ctx, "image stored externally but no blob store configured", "blog_id", b.ID)
		b.Image = nil
		return
	}
	data, err := s.blobs.Get(ctx, b.Image.StorageKey)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "blob load failed", "blog_id", b.ID, "error", err)
		}
		b.Image = nil
		return
	}
	b.Image.Data = data
}
