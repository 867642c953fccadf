package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/docblog/internal/logging"
	"github.com/dmitrijs2005/docblog/internal/server/config"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docblog/internal/server/services"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.StoreOperationTimeout = time.Second
	cfg.RateLimitPerMinute = 10000
	cfg.AuthRateLimitPerMinute = 10000
	cfg.CORSOrigins = []string{"http://localhost:3000"}
	cfg.CORSParentDomain = "example.com"
	return cfg
}

type testAPI struct {
	t   *testing.T
	srv *httptest.Server
}

// newTestAPI runs the full stack over the in-memory backend.
func newTestAPI(t *testing.T, mutate func(*config.Config)) *testAPI {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	m := repomanager.NewMemoryRepositoryManager()
	us := services.NewUserService(m, cfg, logging.Nop{})
	bs := services.NewBlogService(m, nil, cfg, logging.Nop{})
	s := NewServer(cfg, us, bs, m, logging.Nop{})

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv}
}

func newServerWith(t *testing.T, us UserService, bs BlogService, health Pinger) *httptest.Server {
	t.Helper()
	s := NewServer(testConfig(), us, bs, health, logging.Nop{})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func (a *testAPI) do(method, path, token string, body io.Reader, contentType string) *http.Response {
	a.t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(a.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testAPI) postJSON(path string, payload any) *http.Response {
	a.t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(a.t, err)
	return a.do(http.MethodPost, path, "", bytes.NewReader(b), "application/json")
}

func (a *testAPI) register(name, email, password string) AuthResponse {
	a.t.Helper()
	resp := a.postJSON("/api/auth/register", registerRequest{Name: name, Email: email, Password: password})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	var out AuthResponse
	decode(a.t, resp, &out)
	return out
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	decode(t, resp, &e)
	return e
}

type filePart struct {
	field, filename, contentType string
	data                         []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (a *testAPI) createBlog(token string, fields map[string]string, files ...filePart) *http.Response {
	a.t.Helper()
	body, ct := multipartBody(a.t, fields, files...)
	return a.do(http.MethodPost, "/api/blogs", token, body, ct)
}

func tokenCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

const docLink = "https://docs.google.com/document/d/abc/edit"

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

// stubBlogs is a BlogService whose List behaviour is set per test.
type stubBlogs struct {
	BlogService
	list func() ([]*models.Blog, error)
}

func (s stubBlogs) List(context.Context, models.ListFilter) ([]*models.Blog, error) {
	return s.list()
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
