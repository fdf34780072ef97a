package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// CampaignService owns the campaign root documents: creation, membership,
// invites, the fear counter and the lazy schema upgrade applied on read.
type CampaignService struct {
	campaignRepo repository.CampaignRepository
	convRepo     repository.ConversationRepository
	stateRepo    repository.StateRepository
}

func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	convRepo repository.ConversationRepository,
	stateRepo repository.StateRepository,
) *CampaignService {
	if campaignRepo == nil || convRepo == nil || stateRepo == nil {
		panic("all repositories must be non-nil for CampaignService")
	}
	return &CampaignService{
		campaignRepo: campaignRepo,
		convRepo:     convRepo,
		stateRepo:    stateRepo,
	}
}

// Create makes a campaign with the creator as its single director and opens
// the broadcast conversation seeded with the membership at creation time.
func (s *CampaignService) Create(ctx context.Context, ownerID, ownerName, name, gameSystem, theme string, public bool) (*domain.Campaign, error) {
	logCtx := logrus.WithFields(logrus.Fields{"owner_id": ownerID, "name": name})

	if name == "" {
		return nil, fmt.Errorf("create campaign: %w: name is required", ErrValidation)
	}
	if gameSystem == "" {
		gameSystem = domain.DefaultGameSystem
	}

	now := time.Now().UTC()
	campaign := &domain.Campaign{
		ID:      uuid.NewString(),
		Name:    name,
		OwnerID: ownerID,
		Members: domain.MemberMap{
			ownerID: {Role: domain.RoleDirector, JoinedAt: now},
		},
		Public:         public,
		PendingInvites: domain.StringSet{},
		GameSystem:     gameSystem,
		Theme:          theme,
	}
	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		logCtx.WithError(err).Error("Failed to save new campaign")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("campaign_id", campaign.ID)

	// The announcements channel freezes its participant set at creation; it
	// is not auto-expanded when members join later.
	broadcast := &domain.Conversation{
		ID:               domain.BroadcastConversationID(campaign.ID),
		CampaignID:       campaign.ID,
		Type:             domain.ConversationBroadcast,
		Participants:     domain.StringSet{ownerID},
		ParticipantNames: domain.NameMap{ownerID: ownerName},
		UnreadBy:         domain.StringSet{},
	}
	if err := s.convRepo.Save(ctx, broadcast); err != nil && !errors.Is(err, repository.ErrDuplicateEntry) {
		logCtx.WithError(err).Error("Failed to create broadcast conversation")
		return nil, ErrInternalServer
	}

	logCtx.Info("Campaign created")
	return campaign, nil
}

// Get loads a campaign for a reader and upgrades legacy documents in place.
// Only members and the recorded owner pass the gate; outsiders may read a
// Public campaign but never trigger the upgrade, so a stranger cannot be
// written into an ownerless legacy document as its director. The normalized
// value is returned immediately; the corrective write happens at most once
// because a migrated document produces no further patch.
func (s *CampaignService) Get(ctx context.Context, campaignID, readerID string) (*domain.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		logrus.WithError(err).WithField("campaign_id", campaignID).Error("Failed to load campaign")
		return nil, ErrInternalServer
	}

	if !campaign.IsMember(readerID) && (campaign.OwnerID == "" || campaign.OwnerID != readerID) {
		if campaign.Public {
			return campaign, nil
		}
		return nil, ErrNotAuthorized
	}

	if MigrateCampaign(campaign, readerID) {
		logCtx := logrus.WithFields(logrus.Fields{"campaign_id": campaignID, "reader_id": readerID})
		if err := s.campaignRepo.Save(ctx, campaign); err != nil {
			// The in-memory value is already normalized; the write retries
			// on the next legacy read.
			logCtx.WithError(err).Warn("Failed to persist campaign migration patch")
		} else {
			logCtx.Info("Campaign document migrated to current schema")
			s.publish(ctx, campaignID, domain.PathCampaign)
		}
	}
	return campaign, nil
}

// MigrateCampaign normalizes a legacy campaign document and reports whether a
// corrective write is needed. Running it on an already-migrated document
// changes nothing and returns false.
func MigrateCampaign(campaign *domain.Campaign, readerID string) bool {
	patched := false

	if len(campaign.Members) == 0 {
		owner := campaign.OwnerID
		if owner == "" {
			owner = readerID
		}
		campaign.Members = domain.MemberMap{
			owner: {Role: domain.RoleDirector, JoinedAt: time.Now().UTC()},
		}
		if campaign.OwnerID == "" {
			campaign.OwnerID = owner
		}
		patched = true
	}

	if campaign.GameSystem == "" {
		campaign.GameSystem = domain.DefaultGameSystem
		patched = true
	}

	return patched
}

// ListPublic returns the publicly listed campaigns.
func (s *CampaignService) ListPublic(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := s.campaignRepo.ListPublic(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list public campaigns")
		return nil, ErrInternalServer
	}
	return campaigns, nil
}

// ListForParticipant returns every campaign the participant belongs to.
func (s *CampaignService) ListForParticipant(ctx context.Context, participantID string) ([]domain.Campaign, error) {
	campaigns, err := s.campaignRepo.ListForParticipant(ctx, participantID)
	if err != nil {
		logrus.WithError(err).WithField("participant_id", participantID).
			Error("Failed to list campaigns for participant")
		return nil, ErrInternalServer
	}
	return campaigns, nil
}

// InvitePlayer records a pending invite for an email address. Director only.
func (s *CampaignService) InvitePlayer(ctx context.Context, campaignID, directorID, email string) error {
	logCtx := logrus.WithFields(logrus.Fields{"campaign_id": campaignID, "email": email})

	if email == "" {
		return fmt.Errorf("invite player: %w: email is required", ErrValidation)
	}
	campaign, err := s.Get(ctx, campaignID, directorID)
	if err != nil {
		return err
	}
	if !campaign.IsDirector(directorID) {
		return ErrNotAuthorized
	}
	if campaign.PendingInvites.Contains(email) {
		return nil // already invited
	}

	campaign.PendingInvites = campaign.PendingInvites.Add(email)
	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		logCtx.WithError(err).Error("Failed to save pending invite")
		return ErrInternalServer
	}
	s.publish(ctx, campaignID, domain.PathCampaign)
	logCtx.Info("Player invited")
	return nil
}

// ClaimInvites converts the user's pending invites into memberships. Called
// after login; safe to call when nothing is pending, and safe to call twice.
func (s *CampaignService) ClaimInvites(ctx context.Context, user *domain.User) ([]string, error) {
	if user.Email == "" {
		return nil, nil
	}
	claimed, err := s.campaignRepo.ClaimInvites(ctx, user.Email, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to claim pending invites")
		return nil, ErrInternalServer
	}
	for _, campaignID := range claimed {
		s.publish(ctx, campaignID, domain.PathCampaign)
	}
	if len(claimed) > 0 {
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "campaigns": len(claimed)}).
			Info("Pending invites claimed")
	}
	return claimed, nil
}

// IncrementFear adjusts the campaign fear counter. Director only.
func (s *CampaignService) IncrementFear(ctx context.Context, campaignID, viewerID string, delta int) (int, error) {
	campaign, err := s.Get(ctx, campaignID, viewerID)
	if err != nil {
		return 0, err
	}
	if !campaign.IsDirector(viewerID) {
		return 0, ErrNotAuthorized
	}

	fear, err := s.campaignRepo.IncrementFear(ctx, campaignID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return 0, ErrCampaignNotFound
		}
		logrus.WithError(err).WithField("campaign_id", campaignID).Error("Failed to increment fear")
		return 0, ErrInternalServer
	}
	s.publish(ctx, campaignID, domain.PathCampaign)
	return fear, nil
}

// Delete removes the campaign and everything under it. Owner only.
func (s *CampaignService) Delete(ctx context.Context, campaignID, viewerID string) error {
	campaign, err := s.Get(ctx, campaignID, viewerID)
	if err != nil {
		return err
	}
	if campaign.OwnerID != viewerID {
		return ErrNotAuthorized
	}

	if err := s.campaignRepo.Delete(ctx, campaignID); err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).Error("Failed to delete campaign")
		return ErrInternalServer
	}
	// Presence is ephemeral; a failed cleanup just leaves records to age out.
	if _, err := s.stateRepo.PrunePresence(ctx, campaignID, time.Now().Add(24*time.Hour)); err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).
			Warn("Failed to clear presence after campaign delete")
	}
	s.publish(ctx, campaignID, domain.PathCampaign)
	logrus.WithField("campaign_id", campaignID).Info("Campaign deleted")
	return nil
}

func (s *CampaignService) publish(ctx context.Context, campaignID, path string) {
	event := domain.ChangeEvent{Path: path, At: time.Now().UTC()}
	if err := s.stateRepo.PublishChange(ctx, campaignID, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": campaignID,
			"path":        path,
		}).Error("Failed to publish change event")
	}
}
