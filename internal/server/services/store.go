// Package services contains server-side business logic: account
// registration and login, token issuance, and blog CRUD with ownership and
// media handling. Services return sentinels from internal/common; the HTTP
// layer maps them to responses.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docblog/internal/common"
	"go.mongodb.org/mongo-driver/mongo"
)

// withTimeout bounds a single store call. A non-positive d only inherits
// the parent deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err)
}

// mapStoreError keeps domain sentinels and folds everything else into
// ErrStoreTimeout or ErrorInternal, keeping the cause in the message.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrInvalidID),
		errors.Is(err, common.ErrDuplicateEmail),
		errors.Is(err, common.ErrNotAuthorized),
		errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrUnsupportedMedia):
		return err
	case isTimeout(err):
		return fmt.Errorf("%w: %v", common.ErrStoreTimeout, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
}
