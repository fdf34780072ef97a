package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Role is a participant's role inside a single campaign.
type Role string

const (
	RoleDirector Role = "director"
	RolePlayer   Role = "player"
)

// DefaultGameSystem is applied to campaign documents that predate the
// game-system field.
const DefaultGameSystem = "daggerheart"

// Member is one entry in a campaign's member map.
type Member struct {
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// MemberMap maps participant IDs to their membership entry, stored as JSON.
type MemberMap map[string]Member

func (m MemberMap) Value() (driver.Value, error) {
	if m == nil {
		m = MemberMap{}
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal member map: %w", err)
	}
	return string(bytes), nil
}

func (m *MemberMap) Scan(src interface{}) error {
	return scanJSONColumn(src, m, "member map")
}

// Campaign is the root aggregate. Every entity, conversation, presence record
// and live note hangs off exactly one campaign, and deleting the campaign
// cascades to all of them.
//
// OwnerID captures the canonical creator; once a document carries a member
// map, the map alone governs run-time authorization.
type Campaign struct {
	ID             string    `gorm:"type:char(36);primaryKey"`
	Name           string    `gorm:"type:varchar(191);not null"`
	OwnerID        string    `gorm:"type:char(36);index"`
	Members        MemberMap `gorm:"type:text"`
	Public         bool      `gorm:"not null;default:false"`
	PendingInvites StringSet `gorm:"type:text"`
	GameSystem     string    `gorm:"type:varchar(64)"`
	Theme          string    `gorm:"type:varchar(191)"`
	GMFear         int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// RoleOf returns the participant's role and whether they are a member at all.
func (c *Campaign) RoleOf(participantID string) (Role, bool) {
	member, ok := c.Members[participantID]
	if !ok {
		return "", false
	}
	return member.Role, true
}

func (c *Campaign) IsDirector(participantID string) bool {
	role, ok := c.RoleOf(participantID)
	return ok && role == RoleDirector
}

func (c *Campaign) IsMember(participantID string) bool {
	_, ok := c.RoleOf(participantID)
	return ok
}

// ParticipantIDs returns the member IDs in no particular order.
func (c *Campaign) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Members))
	for id := range c.Members {
		ids = append(ids, id)
	}
	return ids
}
