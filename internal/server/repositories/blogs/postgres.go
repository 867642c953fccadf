package blogs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/dbx"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/google/uuid"
)

const selectBlog = `SELECT b.id, b.title, b.google_drive_link,
		 b.image_data, b.image_content_type, b.image_filename, b.image_storage_key,
		 b.author_id, u.name, b.featured, b.created_at, b.updated_at
		 FROM blogs b JOIN users u ON u.id = b.author_id`

type PostgresRepository struct {
	db dbx.DB
}

func NewPostgresRepository(db dbx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlog(row scanner) (*models.Blog, error) {
	var (
		b                                 models.Blog
		data                              []byte
		contentType, filename, storageKey sql.NullString
	)
	err := row.Scan(&b.ID, &b.Title, &b.GoogleDriveLink,
		&data, &contentType, &filename, &storageKey,
		&b.AuthorID, &b.AuthorName, &b.Featured, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if contentType.Valid && filename.Valid {
		b.Image = &models.Image{
			Data:        data,
			ContentType: contentType.String,
			Filename:    filename.String,
			StorageKey:  storageKey.String,
		}
	}
	return &b, nil
}

// imageArgs flattens an optional image into the four nullable columns.
func imageArgs(img *models.Image) []any {
	if img == nil {
		return []any{nil, nil, nil, nil}
	}
	var data any
	if img.StorageKey == "" {
		data = img.Data
	}
	var key any
	if img.StorageKey != "" {
		key = img.StorageKey
	}
	return []any{data, img.ContentType, img.Filename, key}
}

func (r *PostgresRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	query :=
		`WITH ins AS (
		   INSERT INTO blogs (title, google_drive_link, image_data, image_content_type, image_filename, image_storage_key, author_id, featured)
		   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		   RETURNING *
		 )
		 SELECT b.id, b.title, b.google_drive_link,
		 b.image_data, b.image_content_type, b.image_filename, b.image_storage_key,
		 b.author_id, u.name, b.featured, b.created_at, b.updated_at
		 FROM ins b JOIN users u ON u.id = b.author_id
		 `

	args := append([]any{blog.Title, blog.GoogleDriveLink}, imageArgs(blog.Image)...)
	args = append(args, blog.AuthorID, blog.Featured)

	created, err := scanBlog(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.ListFilter) ([]*models.Blog, error) {
	query := selectBlog
	if filter.FeaturedOnly {
		query += ` WHERE b.featured`
	}
	query += ` ORDER BY b.created_at DESC, b.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrInvalidID
	}
	return getByID(ctx, r.db, id, false)
}

func getByID(ctx context.Context, db dbx.DBTX, id string, forUpdate bool) (*models.Blog, error) {
	query := selectBlog + ` WHERE b.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF b`
	}

	b, err := scanBlog(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

// Update locks the row for the duration of fn so the read-check-write
// sequence sees one consistent version.
func (r *PostgresRepository) Update(ctx context.Context, id string, fn MutateFunc) (*models.Blog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrInvalidID
	}

	var updated *models.Blog
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		b, err := getByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}

		query :=
			`UPDATE blogs SET title = $2, google_drive_link = $3,
			 image_data = $4, image_content_type = $5, image_filename = $6, image_storage_key = $7,
			 updated_at = now()
			 WHERE id = $1
			 RETURNING updated_at
			 `
		args := append([]any{id, b.Title, b.GoogleDriveLink}, imageArgs(b.Image)...)

		var updatedAt time.Time
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&updatedAt); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		b.UpdatedAt = updatedAt
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string, fn MutateFunc) (*models.Blog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrInvalidID
	}

	var deleted *models.Blog
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		b, err := getByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		deleted = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
