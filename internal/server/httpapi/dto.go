package httpapi

import (
	"time"

	"github.com/dmitrijs2005/docblog/internal/server/media"
	"github.com/dmitrijs2005/docblog/internal/server/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is a user as clients see it. The password hash never leaves
// the server.
type UserResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AuthResponse answers register and login.
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// AuthorResponse is the embedded author of a blog.
type AuthorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BlogResponse is the JSON form of a blog.
type BlogResponse struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	GoogleDriveLink string         `json:"googleDriveLink"`
	Image           *media.Wire    `json:"image,omitempty"`
	Author          AuthorResponse `json:"author"`
	Featured        bool           `json:"featured"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// BlogEnvelope wraps a single blog on GET /api/blogs/{id}.
type BlogEnvelope struct {
	Success bool         `json:"success"`
	Data    BlogResponse `json:"data"`
}

// MessageResponse is the body of a successful delete.
type MessageResponse struct {
	Message string `json:"message"`
}

func newUserResponse(u *models.User, withCreated bool) UserResponse {
	resp := UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
	if withCreated && !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

func newBlogResponse(b *models.Blog) BlogResponse {
	return BlogResponse{
		ID:              b.ID,
		Title:           b.Title,
		GoogleDriveLink: b.GoogleDriveLink,
		Image:           media.Encode(b.Image),
		Author:          AuthorResponse{ID: b.AuthorID, Name: b.AuthorName},
		Featured:        b.Featured,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
