package service

import "errors"

// Business errors surfaced to handlers. Mutation failures name the action in
// the handler-facing message; raw store errors never leave this layer.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrEntityNotFound       = errors.New("record not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoteNotFound         = errors.New("note not found")
	ErrSessionNotFound      = errors.New("session not found")

	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")

	// ErrNotAuthorized covers every role or ownership violation. The
	// visibility filter keeps the UI from offering such actions, but the
	// write path rejects them as well.
	ErrNotAuthorized = errors.New("not authorized for this action")

	// ErrValidation marks writes rejected locally before reaching the
	// store. Not retried.
	ErrValidation = errors.New("invalid input")

	ErrInternalServer = errors.New("internal server error")

	ErrSessionFinalized = errors.New("session is already finalized")
)
