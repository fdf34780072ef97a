package repository

import (
	"context"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// SessionRepository stores play sessions.
type SessionRepository interface {
	// FindByID returns ErrSessionNotFound when no such session exists.
	FindByID(ctx context.Context, id string) (*domain.Session, error)

	// ListByCampaign returns a campaign's sessions, newest first.
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Session, error)

	// Save creates or updates a session.
	Save(ctx context.Context, session *domain.Session) error
}
