package domain

import "time"

// PresenceStatus is derived by the reader from the last heartbeat; it is never
// stored, or it would drift from wall-clock truth between writes.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusAway    PresenceStatus = "away"
	StatusOffline PresenceStatus = "offline"
)

// Presence is one participant's ephemeral record inside a campaign. It is
// overwritten on every heartbeat and deleted on clean disconnect; an unclean
// disconnect simply lets it age out on the reading side.
type Presence struct {
	ParticipantID string         `json:"participantId"`
	DisplayName   string         `json:"displayName"`
	Status        PresenceStatus `json:"status"` // reported, "online" or "away"
	LastHeartbeat time.Time      `json:"lastHeartbeat"`
	CurrentView   string         `json:"currentView"`
}

// DeriveStatus buckets a participant by elapsed time since their last
// heartbeat. The reported status only matters while the record is fresh: a
// self-reported "away" wins over a derived "online".
func DeriveStatus(now, lastHeartbeat time.Time, reported PresenceStatus, awayAfter, offlineAfter time.Duration) PresenceStatus {
	elapsed := now.Sub(lastHeartbeat)
	switch {
	case elapsed >= offlineAfter:
		return StatusOffline
	case elapsed >= awayAfter:
		return StatusAway
	case reported == StatusAway:
		return StatusAway
	default:
		return StatusOnline
	}
}
