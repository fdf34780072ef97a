package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// Presence timing. The away threshold stays at twice the heartbeat interval
// so a single delayed heartbeat cannot flicker a participant to away.
const (
	HeartbeatInterval = 60 * time.Second
	AwayThreshold     = 2 * time.Minute
	OfflineThreshold  = 5 * time.Minute
)

// PresenceService writes heartbeats and derives liveness for readers. Status
// is computed from elapsed time on every read and never stored.
type PresenceService struct {
	stateRepo repository.StateRepository
}

func NewPresenceService(stateRepo repository.StateRepository) *PresenceService {
	if stateRepo == nil {
		panic("StateRepository cannot be nil for PresenceService")
	}
	return &PresenceService{stateRepo: stateRepo}
}

// Heartbeat overwrites the participant's presence record and notifies feed
// subscribers.
func (s *PresenceService) Heartbeat(ctx context.Context, campaignID, participantID, displayName string, status domain.PresenceStatus, currentView string) error {
	if status != domain.StatusOnline && status != domain.StatusAway {
		status = domain.StatusOnline
	}
	presence := domain.Presence{
		ParticipantID: participantID,
		DisplayName:   displayName,
		Status:        status,
		LastHeartbeat: time.Now().UTC(),
		CurrentView:   currentView,
	}
	if err := s.stateRepo.WriteHeartbeat(ctx, campaignID, presence); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": campaignID, "participant_id": participantID,
		}).Error("Failed to write heartbeat")
		return ErrInternalServer
	}
	s.publish(ctx, campaignID)
	return nil
}

// Disconnect removes the presence record on clean teardown. Best effort: if
// the delete is lost the record ages out through the offline threshold.
func (s *PresenceService) Disconnect(ctx context.Context, campaignID, participantID string) {
	if err := s.stateRepo.RemovePresence(ctx, campaignID, participantID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": campaignID, "participant_id": participantID,
		}).Warn("Failed to remove presence on disconnect")
		return
	}
	s.publish(ctx, campaignID)
}

// List returns the campaign's participants with their derived status.
// Offline participants are excluded entirely.
func (s *PresenceService) List(ctx context.Context, campaignID string, now time.Time) ([]domain.Presence, error) {
	records, err := s.stateRepo.ListPresence(ctx, campaignID)
	if err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).Error("Failed to list presence")
		return nil, ErrInternalServer
	}

	active := make([]domain.Presence, 0, len(records))
	for _, record := range records {
		status := domain.DeriveStatus(now, record.LastHeartbeat, record.Status, AwayThreshold, OfflineThreshold)
		if status == domain.StatusOffline {
			continue
		}
		record.Status = status
		active = append(active, record)
	}
	return active, nil
}

// Prune deletes records past the offline threshold. Readers never prune; this
// runs from the scheduled background job.
func (s *PresenceService) Prune(ctx context.Context, now time.Time) (int64, error) {
	campaignIDs, err := s.stateRepo.PresenceCampaigns(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-OfflineThreshold)
	var removed int64
	for _, campaignID := range campaignIDs {
		n, err := s.stateRepo.PrunePresence(ctx, campaignID, cutoff)
		if err != nil {
			logrus.WithError(err).WithField("campaign_id", campaignID).
				Warn("Failed to prune presence records")
			continue
		}
		if n > 0 {
			removed += n
			s.publish(ctx, campaignID)
		}
	}
	return removed, nil
}

func (s *PresenceService) publish(ctx context.Context, campaignID string) {
	event := domain.ChangeEvent{Path: domain.PathPresence, At: time.Now().UTC()}
	if err := s.stateRepo.PublishChange(ctx, campaignID, event); err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).
			Error("Failed to publish presence change")
	}
}

// Heartbeater is the writer side of the liveness protocol for one connected
// participant. It writes "online" immediately on start and on every tick,
// "away" on demand, and deletes the record on Stop.
type Heartbeater struct {
	service       *PresenceService
	campaignID    string
	participantID string
	displayName   string

	mu          sync.Mutex
	currentView string

	stopOnce sync.Once
	stop     chan struct{}
}

// NewHeartbeater starts the periodic writer. The returned Heartbeater must be
// stopped when its owning scope is torn down or the timer leaks.
func (s *PresenceService) NewHeartbeater(ctx context.Context, campaignID, participantID, displayName string) *Heartbeater {
	h := &Heartbeater{
		service:       s,
		campaignID:    campaignID,
		participantID: participantID,
		displayName:   displayName,
		stop:          make(chan struct{}),
	}
	_ = s.Heartbeat(ctx, campaignID, participantID, displayName, domain.StatusOnline, "")
	go h.run(ctx)
	return h
}

func (h *Heartbeater) run(ctx context.Context) {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			view := h.currentView
			h.mu.Unlock()
			_ = h.service.Heartbeat(ctx, h.campaignID, h.participantID, h.displayName, domain.StatusOnline, view)
		}
	}
}

// SetView updates the view label reported with subsequent heartbeats and
// writes an immediate online heartbeat carrying it.
func (h *Heartbeater) SetView(ctx context.Context, view string) {
	h.mu.Lock()
	h.currentView = view
	h.mu.Unlock()
	_ = h.service.Heartbeat(ctx, h.campaignID, h.participantID, h.displayName, domain.StatusOnline, view)
}

// MarkAway immediately reports the participant as away, as on tab visibility
// loss. The periodic timer flips them back to online on its next tick.
func (h *Heartbeater) MarkAway(ctx context.Context) {
	h.mu.Lock()
	view := h.currentView
	h.mu.Unlock()
	_ = h.service.Heartbeat(ctx, h.campaignID, h.participantID, h.displayName, domain.StatusAway, view)
}

// Stop halts the timer and deletes the presence record.
func (h *Heartbeater) Stop(ctx context.Context) {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.service.Disconnect(ctx, h.campaignID, h.participantID)
	})
}
