package repository

import (
	"context"
	"time"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// StateRepository covers the ephemeral per-campaign state held in Redis:
// presence records, the change-feed transport and the rate-limit counters.
type StateRepository interface {
	// === Presence ===

	// WriteHeartbeat creates or overwrites the participant's presence
	// record.
	WriteHeartbeat(ctx context.Context, campaignID string, presence domain.Presence) error

	// RemovePresence deletes the participant's presence record. Used on
	// clean disconnect; a crashed client's record ages out on the reading
	// side instead.
	RemovePresence(ctx context.Context, campaignID, participantID string) error

	// ListPresence returns every presence record of a campaign, stale ones
	// included. Status derivation and offline filtering happen in the
	// service layer.
	ListPresence(ctx context.Context, campaignID string) ([]domain.Presence, error)

	// PrunePresence deletes records whose last heartbeat is older than
	// cutoff and returns how many were removed.
	PrunePresence(ctx context.Context, campaignID string, cutoff time.Time) (int64, error)

	// PresenceCampaigns returns the campaign IDs that currently hold
	// presence records.
	PresenceCampaigns(ctx context.Context) ([]string, error)

	// === Change feed ===

	// PublishChange announces a change on one of the campaign's paths to
	// every subscriber.
	PublishChange(ctx context.Context, campaignID string, event domain.ChangeEvent) error

	// SubscribeChanges returns a channel of the campaign's change events and
	// a close function. The channel is closed after the close function is
	// called.
	SubscribeChanges(ctx context.Context, campaignID string) (<-chan domain.ChangeEvent, func() error, error)

	// === Rate limiting ===

	// CheckRateLimit increments the counter behind key and reports whether
	// the limit for the window is exceeded.
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
