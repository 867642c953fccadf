package httpapi

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docblog/internal/server/media"
)

func TestBlogLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.register("Alice", "alice@example.com", "secret1")
	bob := api.register("Bob", "bob@example.com", "secret2")

	resp := api.createBlog(alice.Token,
		map[string]string{"title": "Hello", "googleDriveLink": docLink},
		filePart{field: "image", filename: "cover.png", contentType: "image/png", data: pngBytes},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created BlogResponse
	decode(t, resp, &created)
	assert.Equal(t, "Hello", created.Title)
	assert.Equal(t, docLink, created.GoogleDriveLink)
	assert.Equal(t, AuthorResponse{ID: alice.User.ID, Name: "Alice"}, created.Author)
	assert.False(t, created.Featured)
	require.NotNil(t, created.Image)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pngBytes), created.Image.Data)
	assert.Equal(t, "image/png", created.Image.ContentType)
	assert.Equal(t, "cover.png", created.Image.Filename)

	resp = api.do(http.MethodGet, "/api/blogs", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []BlogResponse
	decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Alice", list[0].Author.Name)
	require.NotNil(t, list[0].Image)
	assert.Equal(t, created.Image.Data, list[0].Image.Data)

	resp = api.do(http.MethodGet, "/api/blogs/"+created.ID, "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env BlogEnvelope
	decode(t, resp, &env)
	assert.True(t, env.Success)
	assert.Equal(t, created.ID, env.Data.ID)

	// Bob may neither delete nor edit Alice's post.
	resp = api.do(http.MethodDelete, "/api/blogs/"+created.ID, bob.Token, nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, KindNotAuthorized, decodeError(t, resp).Error)

	body, ct := multipartBody(t, map[string]string{"title": "Mine now"})
	resp = api.do(http.MethodPut, "/api/blogs/"+created.ID, bob.Token, body, ct)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, KindNotAuthorized, decodeError(t, resp).Error)

	resp = api.do(http.MethodGet, "/api/blogs/"+created.ID, "", nil, "")
	decode(t, resp, &env)
	assert.Equal(t, "Hello", env.Data.Title)

	// Alice renames; the link and image stay.
	body, ct = multipartBody(t, map[string]string{"title": "Hello again", "googleDriveLink": ""})
	resp = api.do(http.MethodPut, "/api/blogs/"+created.ID, alice.Token, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated BlogResponse
	decode(t, resp, &updated)
	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, docLink, updated.GoogleDriveLink)
	require.NotNil(t, updated.Image)
	assert.Equal(t, "cover.png", updated.Image.Filename)
	assert.Equal(t, created.CreatedAt.UTC(), updated.CreatedAt.UTC())
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	// Replace the image only.
	body, ct = multipartBody(t, nil, filePart{field: "image", filename: "new.webp", contentType: "image/webp", data: []byte("RIFFwebp")})
	resp = api.do(http.MethodPut, "/api/blogs/"+created.ID, alice.Token, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &updated)
	assert.Equal(t, "Hello again", updated.Title)
	require.NotNil(t, updated.Image)
	assert.Equal(t, "image/webp", updated.Image.ContentType)

	resp = api.do(http.MethodDelete, "/api/blogs/"+created.ID, alice.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msg MessageResponse
	decode(t, resp, &msg)
	assert.NotEmpty(t, msg.Message)

	resp = api.do(http.MethodGet, "/api/blogs/"+created.ID, "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, KindNotFound, decodeError(t, resp).Error)

	resp = api.do(http.MethodDelete, "/api/blogs/"+created.ID, alice.Token, nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateBlog_RequiresAuth(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.createBlog("", map[string]string{"title": "Hello", "googleDriveLink": docLink})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, KindAuthRequired, decodeError(t, resp).Error)

	resp = api.createBlog("forged", map[string]string{"title": "Hello", "googleDriveLink": docLink})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, KindInvalidToken, decodeError(t, resp).Error)
}

func TestCreateBlog_UrlencodedWithoutImage(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.register("Alice", "alice@example.com", "secret1")

	form := url.Values{"title": {"Plain"}, "googleDriveLink": {docLink}}
	resp := api.do(http.MethodPost, "/api/blogs", alice.Token, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"image"`)
}

func TestCreateBlog_RejectedUploads(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.register("Alice", "alice@example.com", "secret1")
	fields := map[string]string{"title": "Hello", "googleDriveLink": docLink}

	tests := []struct {
		name  string
		files []filePart
		kind  string
	}{
		{
			name:  "jpeg type with txt extension",
			files: []filePart{{"image", "photo.txt", "image/jpeg", []byte("jpeg")}},
			kind:  KindUnsupportedMedia,
		},
		{
			name:  "pdf with png extension",
			files: []filePart{{"image", "doc.png", "application/pdf", []byte("%PDF")}},
			kind:  KindUnsupportedMedia,
		},
		{
			name: "two images",
			files: []filePart{
				{"image", "a.png", "image/png", pngBytes},
				{"image", "b.png", "image/png", pngBytes},
			},
			kind: KindUnsupportedMedia,
		},
		{
			name:  "too large",
			files: []filePart{{"image", "big.png", "image/png", make([]byte, media.MaxSize+1)}},
			kind:  KindUnsupportedMedia,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.createBlog(alice.Token, fields, tt.files...)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.kind, decodeError(t, resp).Error)
		})
	}

	resp := api.do(http.MethodGet, "/api/blogs", "", nil, "")
	var list []BlogResponse
	decode(t, resp, &list)
	assert.Empty(t, list)
}

func TestCreateBlog_Validation(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.register("Alice", "alice@example.com", "secret1")

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"short title", map[string]string{"title": " ab ", "googleDriveLink": docLink}},
		{"missing title", map[string]string{"googleDriveLink": docLink}},
		{"relative link", map[string]string{"title": "Hello", "googleDriveLink": "/document/d/abc"}},
		{"ftp link", map[string]string{"title": "Hello", "googleDriveLink": "ftp://docs.google.com/x"}},
		{"foreign host", map[string]string{"title": "Hello", "googleDriveLink": "https://evil.example.net/doc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.createBlog(alice.Token, tt.fields)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			e := decodeError(t, resp)
			assert.Equal(t, KindValidation, e.Error)
			assert.NotContains(t, e.Message, "validation error:")
		})
	}
}

func TestGetBlog_IDs(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.do(http.MethodGet, "/api/blogs/not-an-id", "", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, KindInvalidID, decodeError(t, resp).Error)

	resp = api.do(http.MethodGet, "/api/blogs/"+uuid.NewString(), "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, KindNotFound, decodeError(t, resp).Error)
}

func TestUpdateBlog_Missing(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.register("Alice", "alice@example.com", "secret1")

	body, ct := multipartBody(t, map[string]string{"title": "Whatever"})
	resp := api.do(http.MethodPut, "/api/blogs/"+uuid.NewString(), alice.Token, body, ct)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListBlogs(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.do(http.MethodGet, "/api/blogs", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	alice := api.register("Alice", "alice@example.com", "secret1")
	for _, title := range []string{"First", "Second", "Third"} {
		r := api.createBlog(alice.Token, map[string]string{"title": title, "googleDriveLink": docLink})
		require.Equal(t, http.StatusCreated, r.StatusCode)
	}

	resp = api.do(http.MethodGet, "/api/blogs", "", nil, "")
	var list []BlogResponse
	decode(t, resp, &list)
	require.Len(t, list, 3)
	assert.Equal(t, "Third", list[0].Title)
	assert.Equal(t, "First", list[2].Title)

	resp = api.do(http.MethodGet, "/api/blogs?featured=true", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &list)
	assert.Empty(t, list)

	resp = api.do(http.MethodGet, "/api/blogs?featured=maybe", "", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, KindValidation, decodeError(t, resp).Error)
}
