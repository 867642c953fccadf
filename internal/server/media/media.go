// Package media validates uploaded images and converts them between the
// stored binary form and the base64 JSON form used on the wire.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/server/models"
)

// MaxSize is the upload ceiling for a single image.
const MaxSize = 5 << 20

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Normalize checks the declared content type, the filename extension and
// the size of an upload and returns the image record. Both the type and the
// extension must be allowed; either failing yields common.ErrUnsupportedMedia.
func Normalize(filename, contentType string, r io.Reader) (*models.Image, error) {
	ct, err := normalizeContentType(contentType)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return nil, fmt.Errorf("%w: missing filename", common.ErrUnsupportedMedia)
	}
	if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
		return nil, fmt.Errorf("%w: file extension %q is not allowed", common.ErrUnsupportedMedia, filepath.Ext(name))
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n > MaxSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", common.ErrUnsupportedMedia, MaxSize)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty file", common.ErrUnsupportedMedia)
	}

	return &models.Image{
		Data:        buf.Bytes(),
		ContentType: ct,
		Filename:    name,
	}, nil
}

// FromFileHeaders normalizes the files posted under the image field.
// No file yields (nil, nil); more than one is rejected.
func FromFileHeaders(files []*multipart.FileHeader) (*models.Image, error) {
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: only one image per request", common.ErrUnsupportedMedia)
	}

	fh := files[0]
	if fh.Size > MaxSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", common.ErrUnsupportedMedia, MaxSize)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return Normalize(fh.Filename, fh.Header.Get("Content-Type"), f)
}

func normalizeContentType(contentType string) (string, error) {
	if contentType == "" {
		return "", fmt.Errorf("%w: missing content type", common.ErrUnsupportedMedia)
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: malformed content type", common.ErrUnsupportedMedia)
	}
	mt = strings.ToLower(mt)
	if _, ok := allowedTypes[mt]; !ok {
		return "", fmt.Errorf("%w: content type %q is not allowed", common.ErrUnsupportedMedia, mt)
	}
	return mt, nil
}

// Wire is the JSON form of an image.
type Wire struct {
	Data        string `json:"data"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
}

// Encode converts img into its wire form. A nil or incomplete image
// encodes to nil so partial records never reach a client.
func Encode(img *models.Image) *Wire {
	if img == nil || len(img.Data) == 0 || img.ContentType == "" || img.Filename == "" {
		return nil
	}
	return &Wire{
		Data:        base64.StdEncoding.EncodeToString(img.Data),
		ContentType: img.ContentType,
		Filename:    img.Filename,
	}
}

// Decode is the inverse of Encode.
func Decode(w *Wire) (*models.Image, error) {
	if w == nil {
		return nil, nil
	}
	if w.ContentType == "" || w.Filename == "" {
		return nil, fmt.Errorf("%w: incomplete image", common.ErrValidation)
	}
	data, err := base64.StdEncoding.DecodeString(w.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: image data is not base64", common.ErrValidation)
	}
	return &models.Image{Data: data, ContentType: w.ContentType, Filename: w.Filename}, nil
}

// DataURI renders the image as a data: URI usable in an <img> src.
func (w *Wire) DataURI() string {
	return "data:" + w.ContentType + ";base64," + w.Data
}
