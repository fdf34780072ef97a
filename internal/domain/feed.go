package domain

import "time"

// Well-known change-feed paths. Entity collections use EntityPath; live-note
// logs use LiveNotePath.
const (
	PathCampaign      = "campaign"
	PathPresence      = "presence"
	PathConversations = "conversations"
	PathSessions      = "sessions"
)

// EntityPath is the feed path of one entity collection.
func EntityPath(kind EntityKind) string {
	return "entities/" + string(kind)
}

// LiveNotePath is the feed path of one session's live-note log.
func LiveNotePath(sessionID string) string {
	return "liveNotes/" + sessionID
}

// MessagesPath is the feed path of one conversation's message log.
func MessagesPath(conversationID string) string {
	return "conversations/" + conversationID + "/messages"
}

// ChangeEvent announces that the state behind a path changed. It carries no
// delta: subscribers reload the full snapshot, which keeps local state a
// disposable cache.
type ChangeEvent struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}
