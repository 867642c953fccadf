package blogs

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	blogID   = "0b7e6c2a-3f43-4d7e-9a57-2c7c0c7e9f10"
	authorID = "6f1c2d4e-8a1b-4c5d-9e0f-1a2b3c4d5e6f"

	createQ    = `(?s)^WITH\s+ins\s+AS\s*\(\s*INSERT\s+INTO\s+blogs\s*\(title,.*RETURNING\s+\*\s*\)\s*SELECT\s+b\.id,.*FROM\s+ins\s+b\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*b\.author_id\s*$`
	listQ      = `(?s)^SELECT\s+b\.id,.*FROM\s+blogs\s+b\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*b\.author_id\s+ORDER\s+BY\s+b\.created_at\s+DESC,\s*b\.id$`
	featuredQ  = `(?s)^SELECT\s+b\.id,.*FROM\s+blogs\s+b\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*b\.author_id\s+WHERE\s+b\.featured\s+ORDER\s+BY`
	getQ       = `(?s)^SELECT\s+b\.id,.*FROM\s+blogs\s+b\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*b\.author_id\s+WHERE\s+b\.id\s*=\s*\$1$`
	getLockedQ = `(?s)^SELECT\s+b\.id,.*WHERE\s+b\.id\s*=\s*\$1\s+FOR\s+UPDATE\s+OF\s+b$`
	updateQ    = `(?s)^UPDATE\s+blogs\s+SET\s+title\s*=\s*\$2,.*WHERE\s+id\s*=\s*\$1\s+RETURNING\s+updated_at\s*$`
	deleteQ    = `^DELETE\s+FROM\s+blogs\s+WHERE\s+id\s*=\s*\$1$`
)

var blogColumns = []string{
	"id", "title", "google_drive_link",
	"image_data", "image_content_type", "image_filename", "image_storage_key",
	"author_id", "name", "featured", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func row(rows *sqlmock.Rows, id, title string, withImage bool, created time.Time) *sqlmock.Rows {
	if withImage {
		return rows.AddRow(id, title, "https://docs.google.com/document/d/x/edit",
			[]byte("png-bytes"), "image/png", "a.png", nil,
			authorID, "Alice", false, created, created)
	}
	return rows.AddRow(id, title, "https://docs.google.com/document/d/x/edit",
		nil, nil, nil, nil,
		authorID, "Alice", false, created, created)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(createQ).
		WithArgs("Hi There", "https://docs.google.com/document/d/x/edit",
			[]byte("png-bytes"), "image/png", "a.png", nil, authorID, false).
		WillReturnRows(row(sqlmock.NewRows(blogColumns), blogID, "Hi There", true, now))

	got, err := repo.Create(context.Background(), &models.Blog{
		Title:           "Hi There",
		GoogleDriveLink: "https://docs.google.com/document/d/x/edit",
		Image:           &models.Image{Data: []byte("png-bytes"), ContentType: "image/png", Filename: "a.png"},
		AuthorID:        authorID,
	})
	require.NoError(t, err)
	assert.Equal(t, blogID, got.ID)
	assert.Equal(t, "Alice", got.AuthorName)
	require.NotNil(t, got.Image)
	assert.Equal(t, []byte("png-bytes"), got.Image.Data)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StorageKeyKeepsBytesOutOfRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(blogColumns).AddRow(blogID, "Hi There", "https://docs.google.com/document/d/x/edit",
		nil, "image/png", "a.png", "blogs/k.png", authorID, "Alice", false, now, now)
	mock.ExpectQuery(createQ).
		WithArgs("Hi There", sqlmock.AnyArg(), nil, "image/png", "a.png", "blogs/k.png", authorID, false).
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.Blog{
		Title:    "Hi There",
		Image:    &models.Image{Data: []byte("png-bytes"), ContentType: "image/png", Filename: "a.png", StorageKey: "blogs/k.png"},
		AuthorID: authorID,
	})
	require.NoError(t, err)
	assert.Equal(t, "blogs/k.png", got.Image.StorageKey)
	assert.Nil(t, got.Image.Data)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(createQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Blog{Title: "abc", AuthorID: authorID})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(blogColumns)
	row(rows, blogID, "newest", false, now)
	row(rows, "1b7e6c2a-3f43-4d7e-9a57-2c7c0c7e9f10", "older", true, now.Add(-time.Hour))
	mock.ExpectQuery(listQ).WillReturnRows(rows)

	got, err := repo.List(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newest", got[0].Title)
	assert.Nil(t, got[0].Image)
	assert.NotNil(t, got[1].Image)
}

func TestList_Featured(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(featuredQ).WillReturnRows(sqlmock.NewRows(blogColumns))

	got, err := repo.List(context.Background(), models.ListFilter{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(blogColumns).AddRow(blogID, "t", "l", nil, nil, nil, nil, authorID, "Alice", "not-a-bool", "x", "y")
	mock.ExpectQuery(listQ).WillReturnRows(rows)

	_, err := repo.List(context.Background(), models.ListFilter{})
	assert.Error(t, err)
}

func TestGetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(getQ).WithArgs(blogID).
			WillReturnRows(row(sqlmock.NewRows(blogColumns), blogID, "Hi There", false, time.Now()))

		got, err := repo.GetByID(context.Background(), blogID)
		require.NoError(t, err)
		assert.Equal(t, "Hi There", got.Title)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(getQ).WithArgs(blogID).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), blogID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		_, err := repo.GetByID(context.Background(), "not-a-valid-id")
		assert.ErrorIs(t, err, common.ErrInvalidID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().UTC().Add(-time.Hour)
	updatedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(getLockedQ).WithArgs(blogID).
		WillReturnRows(row(sqlmock.NewRows(blogColumns), blogID, "old title", true, created))
	mock.ExpectQuery(updateQ).
		WithArgs(blogID, "new title", "https://docs.google.com/document/d/x/edit",
			[]byte("png-bytes"), "image/png", "a.png", nil).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))
	mock.ExpectCommit()

	got, err := repo.Update(context.Background(), blogID, func(b *models.Blog) error {
		b.Title = "new title"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.True(t, updatedAt.Equal(got.UpdatedAt))
	assert.Equal(t, "Alice", got.AuthorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_CallbackErrorRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(getLockedQ).WithArgs(blogID).
		WillReturnRows(row(sqlmock.NewRows(blogColumns), blogID, "old title", false, time.Now()))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), blogID, func(b *models.Blog) error {
		return common.ErrNotAuthorized
	})
	assert.ErrorIs(t, err, common.ErrNotAuthorized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFoundRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(getLockedQ).WithArgs(blogID).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), blogID, func(b *models.Blog) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_InvalidID(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.Update(context.Background(), "42", func(*models.Blog) error { return nil })
	assert.ErrorIs(t, err, common.ErrInvalidID)
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(getLockedQ).WithArgs(blogID).
		WillReturnRows(row(sqlmock.NewRows(blogColumns), blogID, "bye", true, time.Now()))
	mock.ExpectExec(deleteQ).WithArgs(blogID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Delete(context.Background(), blogID, func(*models.Blog) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, blogID, got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotAuthorizedKeepsRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(getLockedQ).WithArgs(blogID).
		WillReturnRows(row(sqlmock.NewRows(blogColumns), blogID, "keep", false, time.Now()))
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), blogID, func(*models.Blog) error { return common.ErrNotAuthorized })
	assert.ErrorIs(t, err, common.ErrNotAuthorized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ExecErrorIsWrapped(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(getLockedQ).WithArgs(blogID).
		WillReturnRows(row(sqlmock.NewRows(blogColumns), blogID, "x", false, time.Now()))
	mock.ExpectExec(deleteQ).WithArgs(blogID).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), blogID, func(*models.Blog) error { return nil })
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
