package repository

import "errors"

// Shared repository errors. Adapters map driver-specific failures onto these
// so that services never inspect gorm or redis errors directly.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means a write violated a unique constraint.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

var (
	ErrUserNotFound         = ErrNotFound
	ErrCampaignNotFound     = ErrNotFound
	ErrEntityNotFound       = ErrNotFound
	ErrConversationNotFound = ErrNotFound
	ErrNoteNotFound         = ErrNotFound
	ErrSessionNotFound      = ErrNotFound
)
