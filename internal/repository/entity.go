package repository

import (
	"context"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// EntityRepository is the single generic store behind every entity kind.
// Kind-specific behavior lives in the kind registry, not in per-kind
// repositories.
type EntityRepository interface {
	// ListByKind returns every record of one collection, newest last.
	ListByKind(ctx context.Context, campaignID string, kind domain.EntityKind) ([]domain.Entity, error)

	// FindByID returns ErrEntityNotFound when no such record exists.
	FindByID(ctx context.Context, id string) (*domain.Entity, error)

	// Save creates or updates a record.
	Save(ctx context.Context, entity *domain.Entity) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error
}
