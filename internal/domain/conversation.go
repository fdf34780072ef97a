package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// ConversationType distinguishes 1:1 channels from the campaign-wide
// announcements channel.
type ConversationType string

const (
	ConversationDirect    ConversationType = "direct"
	ConversationBroadcast ConversationType = "broadcast"
)

// MaxMessageLength bounds message content. Longer messages are rejected
// before they reach the store.
const MaxMessageLength = 2000

// BroadcastConversationID is the ID of a campaign's announcements channel.
// Only directors may write to it; every member may read it. Conversation IDs
// share one global table, so every derived ID carries the campaign prefix.
func BroadcastConversationID(campaignID string) string {
	return campaignID + ":announcements"
}

// DirectConversationID derives the deterministic ID of the 1:1 channel
// between two participants of a campaign. Both sides compute the same ID
// independently, so "get or create" is idempotent without a read-then-write
// race. The campaign prefix keeps the same pair in two campaigns on two
// separate channels.
func DirectConversationID(campaignID, a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return campaignID + ":" + strings.Join(pair, "_")
}

// Conversation is a message channel scoped to one campaign.
//
// A broadcast conversation's participant set equals the campaign membership at
// creation time; it is not auto-expanded when new members join. UnreadBy holds
// the participants who have not opened the conversation since the latest
// message.
type Conversation struct {
	ID               string           `gorm:"type:varchar(191);primaryKey"`
	CampaignID       string           `gorm:"type:char(36);index;not null"`
	Type             ConversationType `gorm:"type:varchar(16);not null"`
	Participants     StringSet        `gorm:"type:text"`
	ParticipantNames NameMap          `gorm:"type:text"`
	LastMessage      string           `gorm:"type:varchar(191)"` // preview only
	LastMessageAt    time.Time        `gorm:"index"`
	UnreadBy         StringSet        `gorm:"type:text"`
	CreatedAt        time.Time        `gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime"`
}

// HasParticipant reports whether the participant belongs to the conversation.
func (c *Conversation) HasParticipant(participantID string) bool {
	return c.Participants.Contains(participantID)
}

// Message belongs to exactly one conversation. It is immutable once created
// except for growth of the ReadBy set.
type Message struct {
	ID             string    `gorm:"type:char(36);primaryKey"`
	ConversationID string    `gorm:"type:varchar(191);index;not null"`
	CampaignID     string    `gorm:"type:char(36);index;not null"`
	SenderID       string    `gorm:"type:char(36);not null"`
	SenderName     string    `gorm:"type:varchar(191)"`
	Content        string    `gorm:"type:text;not null"`
	ReadBy         StringSet `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

// Preview truncates message content for the conversation's last-message
// field, backing off to a rune boundary so the preview stays valid UTF-8.
func (m *Message) Preview() string {
	const max = 120
	if len(m.Content) <= max {
		return m.Content
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(m.Content[cut]) {
		cut--
	}
	return m.Content[:cut]
}
