package repository

import (
	"context"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// CampaignRepository stores campaign root documents.
type CampaignRepository interface {
	// FindByID returns ErrCampaignNotFound when no such campaign exists.
	FindByID(ctx context.Context, id string) (*domain.Campaign, error)

	// ListPublic returns campaigns with the public-listing flag set.
	ListPublic(ctx context.Context) ([]domain.Campaign, error)

	// ListForParticipant returns campaigns whose member map contains the
	// participant.
	ListForParticipant(ctx context.Context, participantID string) ([]domain.Campaign, error)

	// Save creates or updates a campaign document.
	Save(ctx context.Context, campaign *domain.Campaign) error

	// IncrementFear atomically adds delta to the campaign's fear counter and
	// returns the new value.
	IncrementFear(ctx context.Context, id string, delta int) (int, error)

	// ClaimInvites finds every campaign with email in its pending-invite set
	// and, in one transaction per campaign, adds the participant as a player
	// and removes the email. Running it twice concurrently produces no
	// duplicate membership entry. Returns the IDs of the claimed campaigns.
	ClaimInvites(ctx context.Context, email, participantID string) ([]string, error)

	// Delete removes the campaign and cascades to every record in every
	// sub-collection (entities, conversations, messages, sessions, live
	// notes) in a single transaction.
	Delete(ctx context.Context, id string) error
}
