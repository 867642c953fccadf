// Package users stores registered accounts. Implementations return
// common.ErrDuplicateEmail when the email is taken, common.ErrorNotFound for
// missing accounts and common.ErrInvalidID for ids the backend cannot parse.
package users

import (
	"context"

	"github.com/dmitrijs2005/docblog/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
