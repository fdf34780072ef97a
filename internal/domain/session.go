package domain

import "time"

// SessionStatus tracks whether a play session is still collecting live notes.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionFinalized SessionStatus = "finalized"
)

// Session is a single play session of a campaign. Finalizing it appends the
// compiled live-note summary and clears the live-note log.
type Session struct {
	ID         string        `gorm:"type:char(36);primaryKey"`
	CampaignID string        `gorm:"type:char(36);index;not null"`
	Name       string        `gorm:"type:varchar(191);not null"`
	Status     SessionStatus `gorm:"type:varchar(16);not null"`
	Summary    string        `gorm:"type:text"`
	StartedAt  time.Time     `gorm:"autoCreateTime"`
	EndedAt    *time.Time
}
