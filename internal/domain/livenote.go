package domain

import (
	"sort"
	"strings"
	"time"
)

// LiveNote is an ephemeral note captured during an active session. The log is
// consumed when the session is finalized and is not meant to persist past it.
type LiveNote struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	CampaignID string    `gorm:"type:char(36);index;not null"`
	SessionID  string    `gorm:"type:char(36);index;not null"`
	AuthorID   string    `gorm:"type:char(36);not null"`
	AuthorName string    `gorm:"type:varchar(191)"`
	Content    string    `gorm:"type:text;not null"`
	Highlight  bool      `gorm:"not null;default:false"`
	Seq        int       `gorm:"not null;default:0"` // client order hint
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

// SortNotes orders notes by creation time, breaking identical timestamps with
// the client sequence hint and then the note ID. Store return order is never
// relied on.
func SortNotes(notes []LiveNote) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.ID < b.ID
	})
}

// CompileSummary renders the session's notes as a bulleted list. If any note
// is highlighted only the highlighted notes are included; otherwise every note
// is, so a session without highlights still produces a summary.
func CompileSummary(notes []LiveNote) string {
	ordered := make([]LiveNote, len(notes))
	copy(ordered, notes)
	SortNotes(ordered)

	highlighted := ordered[:0:0]
	for _, note := range ordered {
		if note.Highlight {
			highlighted = append(highlighted, note)
		}
	}
	if len(highlighted) > 0 {
		ordered = highlighted
	}

	var b strings.Builder
	for i, note := range ordered {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(note.Content)
	}
	return b.String()
}
