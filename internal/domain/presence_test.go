package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	awayAfter := 2 * time.Minute
	offlineAfter := 5 * time.Minute

	cases := []struct {
		name     string
		elapsed  time.Duration
		reported domain.PresenceStatus
		want     domain.PresenceStatus
	}{
		{"fresh heartbeat is online", 30 * time.Second, domain.StatusOnline, domain.StatusOnline},
		{"fresh but self-reported away stays away", 30 * time.Second, domain.StatusAway, domain.StatusAway},
		{"under away threshold", 90 * time.Second, domain.StatusOnline, domain.StatusOnline},
		{"at away threshold", 2 * time.Minute, domain.StatusOnline, domain.StatusAway},
		{"between thresholds", 3 * time.Minute, domain.StatusOnline, domain.StatusAway},
		{"at offline threshold", 5 * time.Minute, domain.StatusOnline, domain.StatusOffline},
		{"long gone", 400 * time.Second, domain.StatusAway, domain.StatusOffline},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.DeriveStatus(now, now.Add(-tc.elapsed), tc.reported, awayAfter, offlineAfter)
			assert.Equal(t, tc.want, got)
		})
	}
}
