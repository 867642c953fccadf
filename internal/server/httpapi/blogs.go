package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/server/media"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/dmitrijs2005/docblog/internal/server/services"
)

const (
	// maxUploadBody leaves room for the text fields next to a full-size image.
	maxUploadBody   = media.MaxSize + 1<<20
	multipartMemory = 8 << 20
	imageField      = "image"
)

// parseBlogForm reads a multipart or urlencoded body. Only multipart bodies
// may carry an image.
func parseBlogForm(w http.ResponseWriter, r *http.Request) (url.Values, *models.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	err := r.ParseMultipartForm(multipartMemory)
	switch {
	case err == nil:
	case errors.Is(err, http.ErrNotMultipart):
		return r.PostForm, nil, nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, fmt.Errorf("%w: image exceeds %d bytes", common.ErrUnsupportedMedia, media.MaxSize)
		}
		return nil, nil, fmt.Errorf("%w: malformed form body", common.ErrValidation)
	}

	img, err := media.FromFileHeaders(r.MultipartForm.File[imageField])
	if err != nil {
		return nil, nil, err
	}
	return url.Values(r.MultipartForm.Value), img, nil
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// optional returns a pointer to the field value when it is present and
// non-empty.
func optional(v url.Values, key string) *string {
	if !v.Has(key) || v.Get(key) == "" {
		return nil
	}
	s := v.Get(key)
	return &s
}

func (s *Server) listBlogs(w http.ResponseWriter, r *http.Request) {
	var filter models.ListFilter
	if raw := r.URL.Query().Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: featured must be true or false", common.ErrValidation))
			return
		}
		filter.FeaturedOnly = featured
	}

	list, err := s.blogs.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]BlogResponse, 0, len(list))
	for _, b := range list {
		resp = append(resp, newBlogResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getBlog(w http.ResponseWriter, r *http.Request) {
	b, err := s.blogs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BlogEnvelope{Success: true, Data: newBlogResponse(b)})
}

func (s *Server) createBlog(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	values, img, err := parseBlogForm(w, r)
	defer cleanupForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	b, err := s.blogs.Create(r.Context(), userID, services.BlogInput{
		Title:           values.Get("title"),
		GoogleDriveLink: values.Get("googleDriveLink"),
		Image:           img,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newBlogResponse(b))
}

func (s *Server) updateBlog(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	values, img, err := parseBlogForm(w, r)
	defer cleanupForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	patch := models.BlogPatch{
		Title:           optional(values, "title"),
		GoogleDriveLink: optional(values, "googleDriveLink"),
		Image:           img,
	}

	b, err := s.blogs.Update(r.Context(), chi.URLParam(r, "id"), userID, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBlogResponse(b))
}

func (s *Server) deleteBlog(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.blogs.Delete(r.Context(), id, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Blog deleted successfully"})
}
