package models

import "time"

// Image is an uploaded picture attached to a blog. Data, ContentType and
// Filename are either all set or the image is absent.
//
// StorageKey is set instead of Data when the bytes live in the blob store;
// the services layer loads Data back before the image is returned.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
	StorageKey  string
}

// Blog is a post pointing at an externally hosted document.
type Blog struct {
	ID              string
	Title           string
	GoogleDriveLink string
	Image           *Image
	AuthorID        string
	AuthorName      string
	Featured        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BlogPatch carries the fields of an update. Nil fields keep their value.
type BlogPatch struct {
	Title           *string
	GoogleDriveLink *string
	Image           *Image
}

// Empty reports whether the patch changes nothing.
func (p BlogPatch) Empty() bool {
	return p.Title == nil && p.GoogleDriveLink == nil && p.Image == nil
}

// ListFilter narrows List results.
type ListFilter struct {
	FeaturedOnly bool
}
