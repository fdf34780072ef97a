package repository

import (
	"context"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// UserRepository stores authenticated identities.
type UserRepository interface {
	// FindByUsername returns ErrUserNotFound when no such user exists.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID returns ErrUserNotFound when no such user exists.
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// Save creates or updates a user. A unique-constraint violation is
	// reported as ErrDuplicateEntry.
	Save(ctx context.Context, user *domain.User) error
}
