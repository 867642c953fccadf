package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/filex"
	"github.com/dmitrijs2005/docblog/internal/server/media"
)

// HTTPClient implements Client over the JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			apiErr.Kind = eb.Error
			apiErr.Message = eb.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, "", bytes.NewReader(b), "application/json", out)
}

func (c *HTTPClient) Register(ctx context.Context, name, email string, password []byte) (*AuthResult, error) {
	var out AuthResult
	err := c.postJSON(ctx, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": string(password),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*AuthResult, error) {
	var out AuthResult
	err := c.postJSON(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": string(password),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListBlogs(ctx context.Context, featuredOnly bool) ([]Blog, error) {
	path := "/api/blogs"
	if featuredOnly {
		path += "?featured=true"
	}
	var out []Blog
	if err := c.do(ctx, http.MethodGet, path, "", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetBlog(ctx context.Context, id string) (*Blog, error) {
	var out struct {
		Data Blog `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/blogs/"+url.PathEscape(id), "", nil, "", &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) CreateBlog(ctx context.Context, token string, in BlogInput) (*Blog, error) {
	fields := map[string]string{"title": in.Title, "googleDriveLink": in.GoogleDriveLink}
	body, ct, err := buildForm(fields, in.ImagePath)
	if err != nil {
		return nil, err
	}

	var out Blog
	if err := c.do(ctx, http.MethodPost, "/api/blogs", token, body, ct, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateBlog(ctx context.Context, token, id string, in BlogPatch) (*Blog, error) {
	fields := map[string]string{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.GoogleDriveLink != nil {
		fields["googleDriveLink"] = *in.GoogleDriveLink
	}
	body, ct, err := buildForm(fields, in.ImagePath)
	if err != nil {
		return nil, err
	}

	var out Blog
	if err := c.do(ctx, http.MethodPut, "/api/blogs/"+url.PathEscape(id), token, body, ct, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteBlog(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/blogs/"+url.PathEscape(id), token, nil, "", nil)
}

// Ping checks /healthz.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, "", nil)
}

// maxImageSize is the server's upload limit; oversized files fail before
// they are sent.
const maxImageSize = media.MaxSize

// buildForm encodes fields and, when imagePath is set, the image file as a
// multipart body.
func buildForm(fields map[string]string, imagePath string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if imagePath != "" {
		data, err := filex.ReadFileLimited(imagePath, maxImageSize)
		if err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}

		name := filepath.Base(imagePath)
		ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
		if ct == "" {
			ct = http.DetectContentType(data)
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
