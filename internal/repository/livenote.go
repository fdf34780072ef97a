package repository

import (
	"context"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// LiveNoteRepository stores the ephemeral per-session note log.
type LiveNoteRepository interface {
	// ListBySession returns every note of a session. Callers order the
	// result themselves; store order is not meaningful.
	ListBySession(ctx context.Context, sessionID string) ([]domain.LiveNote, error)

	// FindByID returns ErrNoteNotFound when no such note exists.
	FindByID(ctx context.Context, id string) (*domain.LiveNote, error)

	// Save creates or updates a note.
	Save(ctx context.Context, note *domain.LiveNote) error

	// Delete removes a single note.
	Delete(ctx context.Context, id string) error

	// ClearSession removes every note of a session.
	ClearSession(ctx context.Context, sessionID string) error
}
