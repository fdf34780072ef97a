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

// ConversationService implements messaging and unread tracking: deterministic
// direct channels, the director-only broadcast channel and per-recipient
// unread sets.
type ConversationService struct {
	convRepo     repository.ConversationRepository
	campaignRepo repository.CampaignRepository
	stateRepo    repository.StateRepository
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	campaignRepo repository.CampaignRepository,
	stateRepo repository.StateRepository,
) *ConversationService {
	if convRepo == nil || campaignRepo == nil || stateRepo == nil {
		panic("all repositories must be non-nil for ConversationService")
	}
	return &ConversationService{
		convRepo:     convRepo,
		campaignRepo: campaignRepo,
		stateRepo:    stateRepo,
	}
}

// EnsureDirect returns the 1:1 conversation between two members, creating it
// when missing. Both sides compute the same deterministic ID, so concurrent
// creates collapse onto one channel.
func (s *ConversationService) EnsureDirect(ctx context.Context, campaignID, viewerID, viewerName, otherID string) (*domain.Conversation, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, ErrInternalServer
	}
	if !campaign.IsMember(viewerID) || !campaign.IsMember(otherID) {
		return nil, ErrNotAuthorized
	}

	conversationID := domain.DirectConversationID(campaignID, viewerID, otherID)
	conversation, err := s.convRepo.FindByID(ctx, conversationID)
	if err == nil {
		if conversation.CampaignID != campaignID {
			return nil, ErrConversationNotFound
		}
		return conversation, nil
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Error("Failed to load direct conversation")
		return nil, ErrInternalServer
	}

	conversation = &domain.Conversation{
		ID:           conversationID,
		CampaignID:   campaignID,
		Type:         domain.ConversationDirect,
		Participants: domain.StringSet{viewerID, otherID},
		ParticipantNames: domain.NameMap{
			viewerID: viewerName,
			otherID:  "", // filled on the other side's first send
		},
		UnreadBy: domain.StringSet{},
	}
	if err := s.convRepo.Save(ctx, conversation); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// The other side created it first; use theirs.
			winner, err := s.convRepo.FindByID(ctx, conversationID)
			if err != nil {
				return nil, ErrInternalServer
			}
			if winner.CampaignID != campaignID {
				return nil, ErrConversationNotFound
			}
			return winner, nil
		}
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Error("Failed to create direct conversation")
		return nil, ErrInternalServer
	}

	s.publish(ctx, campaignID, domain.PathConversations)
	return conversation, nil
}

// Send validates and appends a message, then atomically updates the preview
// and marks every other participant unread. The sender's own unread state is
// untouched.
func (s *ConversationService) Send(ctx context.Context, campaignID, conversationID, senderID, senderName, content string) (*domain.Message, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"campaign_id": campaignID, "conversation_id": conversationID, "sender_id": senderID,
	})

	if content == "" {
		return nil, fmt.Errorf("send message: %w: content is empty", ErrValidation)
	}
	if len(content) > domain.MaxMessageLength {
		return nil, fmt.Errorf("send message: %w: content exceeds %d characters", ErrValidation, domain.MaxMessageLength)
	}

	conversation, err := s.loadForParticipant(ctx, campaignID, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if conversation.Type == domain.ConversationBroadcast {
		campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
		if err != nil {
			return nil, ErrInternalServer
		}
		if !campaign.IsDirector(senderID) {
			return nil, ErrNotAuthorized
		}
	}

	message := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		CampaignID:     campaignID,
		SenderID:       senderID,
		SenderName:     senderName,
		Content:        content,
		ReadBy:         domain.StringSet{senderID},
		CreatedAt:      time.Now().UTC(),
	}

	unread := make([]string, 0, len(conversation.Participants))
	for _, participantID := range conversation.Participants {
		if participantID != senderID {
			unread = append(unread, participantID)
		}
	}

	if err := s.convRepo.AppendMessage(ctx, message, message.Preview(), unread); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		logCtx.WithError(err).Error("Failed to append message")
		return nil, ErrInternalServer
	}

	s.publish(ctx, campaignID, domain.PathConversations, domain.MessagesPath(conversationID))
	logCtx.WithField("message_id", message.ID).Debug("Message sent")
	return message, nil
}

// MarkRead clears the reader's unread state for the conversation. Duplicate
// calls from concurrent tabs are harmless.
func (s *ConversationService) MarkRead(ctx context.Context, campaignID, conversationID, readerID string) error {
	if _, err := s.loadForParticipant(ctx, campaignID, conversationID, readerID); err != nil {
		return err
	}
	if err := s.convRepo.MarkRead(ctx, conversationID, readerID); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return ErrConversationNotFound
		}
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Error("Failed to mark conversation read")
		return ErrInternalServer
	}
	s.publish(ctx, campaignID, domain.PathConversations, domain.MessagesPath(conversationID))
	return nil
}

// ListForParticipant returns the viewer's conversations: channels they belong
// to, newest activity first.
func (s *ConversationService) ListForParticipant(ctx context.Context, campaignID, participantID string) ([]domain.Conversation, error) {
	conversations, err := s.convRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).
			Error("Failed to list conversations")
		return nil, ErrInternalServer
	}
	mine := make([]domain.Conversation, 0, len(conversations))
	for _, conversation := range conversations {
		if conversation.HasParticipant(participantID) {
			mine = append(mine, conversation)
		}
	}
	return mine, nil
}

// Messages returns a conversation's messages for one of its participants.
func (s *ConversationService) Messages(ctx context.Context, campaignID, conversationID, viewerID string) ([]domain.Message, error) {
	if _, err := s.loadForParticipant(ctx, campaignID, conversationID, viewerID); err != nil {
		return nil, err
	}
	messages, err := s.convRepo.ListMessages(ctx, conversationID)
	if err != nil {
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Error("Failed to list messages")
		return nil, ErrInternalServer
	}
	return messages, nil
}

func (s *ConversationService) loadForParticipant(ctx context.Context, campaignID, conversationID, participantID string) (*domain.Conversation, error) {
	conversation, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Error("Failed to load conversation")
		return nil, ErrInternalServer
	}
	if conversation.CampaignID != campaignID {
		return nil, ErrConversationNotFound
	}
	if !conversation.HasParticipant(participantID) {
		return nil, ErrNotAuthorized
	}
	return conversation, nil
}

func (s *ConversationService) publish(ctx context.Context, campaignID string, paths ...string) {
	for _, path := range paths {
		event := domain.ChangeEvent{Path: path, At: time.Now().UTC()}
		if err := s.stateRepo.PublishChange(ctx, campaignID, event); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"campaign_id": campaignID, "path": path,
			}).Error("Failed to publish conversation change")
		}
	}
}
