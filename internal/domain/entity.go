package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityKind identifies one of the campaign's record collections. All kinds
// share a single shape; kind-specific fields live in the Content document.
type EntityKind string

const (
	KindNPC           EntityKind = "npc"
	KindLocation      EntityKind = "location"
	KindLore          EntityKind = "lore"
	KindTimelineEvent EntityKind = "timeline-event"
	KindEncounter     EntityKind = "encounter"
	KindNote          EntityKind = "note"
	KindQuest         EntityKind = "quest"
	KindHandout       EntityKind = "handout"
	KindCharacter     EntityKind = "character"
)

// KindInfo is the per-kind metadata consulted by the generic CRUD path.
// Personal kinds belong to their author: players may create and mutate their
// own records. Campaign reference kinds are mutable only by a director.
type KindInfo struct {
	Kind     EntityKind
	Personal bool
}

// Kinds is the registry of every supported entity collection.
var Kinds = map[EntityKind]KindInfo{
	KindNPC:           {Kind: KindNPC},
	KindLocation:      {Kind: KindLocation},
	KindLore:          {Kind: KindLore},
	KindTimelineEvent: {Kind: KindTimelineEvent},
	KindEncounter:     {Kind: KindEncounter},
	KindQuest:         {Kind: KindQuest},
	KindHandout:       {Kind: KindHandout},
	KindNote:          {Kind: KindNote, Personal: true},
	KindCharacter:     {Kind: KindCharacter, Personal: true},
}

// KnownKind reports whether k names a registered collection.
func KnownKind(k EntityKind) bool {
	_, ok := Kinds[k]
	return ok
}

// Entity is the shared shape of every campaign record. Hidden gates the record
// to directors; ForceVisible is a director-set override that reveals a hidden
// record to players without clearing the flag.
type Entity struct {
	ID           string     `gorm:"type:char(36);primaryKey"`
	CampaignID   string     `gorm:"type:char(36);index;not null"`
	Kind         EntityKind `gorm:"type:varchar(32);index;not null"`
	Name         string     `gorm:"type:varchar(191);not null"`
	Content      string     `gorm:"type:text"` // kind-specific fields, JSON
	Hidden       bool       `gorm:"not null;default:false"`
	ForceVisible bool       `gorm:"not null;default:false"`
	CreatorID    string     `gorm:"type:char(36);index;not null"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

// ParseContent decodes the kind-specific content document.
func (e *Entity) ParseContent() (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if e.Content == "" || e.Content == "null" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(e.Content), &fields); err != nil {
		return nil, fmt.Errorf("unmarshal %s content: %w", e.Kind, err)
	}
	return fields, nil
}

// SetContent encodes the kind-specific content document.
func (e *Entity) SetContent(fields map[string]interface{}) error {
	if fields == nil {
		e.Content = ""
		return nil
	}
	bytes, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal %s content: %w", e.Kind, err)
	}
	e.Content = string(bytes)
	return nil
}
