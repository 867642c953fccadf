package client

import (
	"time"

	"github.com/dmitrijs2005/docblog/internal/server/media"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image is the base64 wire form of a blog image, shared with the server.
type Image = media.Wire

type Blog struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	GoogleDriveLink string    `json:"googleDriveLink"`
	Image           *Image    `json:"image,omitempty"`
	Author          Author    `json:"author"`
	Featured        bool      `json:"featured"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// BlogInput describes a new post. ImagePath is optional.
type BlogInput struct {
	Title           string
	GoogleDriveLink string
	ImagePath       string
}

// BlogPatch describes an edit. Nil fields and an empty ImagePath are left
// unchanged on the server.
type BlogPatch struct {
	Title           *string
	GoogleDriveLink *string
	ImagePath       string
}
