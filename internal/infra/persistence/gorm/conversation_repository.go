package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// GormConversationRepository is the ConversationRepository implementation.
type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	if db == nil {
		panic("database connection cannot be nil for GormConversationRepository")
	}
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrConversationNotFound
		}
		return nil, fmt.Errorf("gorm: find conversation %s: %w", id, err)
	}
	return &conversation, nil
}

func (r *GormConversationRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("last_message_at desc").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list conversations of campaign %s: %w", campaignID, err)
	}
	return conversations, nil
}

// Save is a plain insert, never an upsert. Conversation IDs are deterministic
// (campaign-scoped pair or broadcast IDs), so a concurrent create of the same
// channel must surface as ErrDuplicateEntry for callers to reload, not update
// the winner's row in place.
func (r *GormConversationRepository) Save(ctx context.Context, conversation *domain.Conversation) error {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save conversation %s: %w", conversation.ID, err)
	}
	return nil
}

func (r *GormConversationRepository) AppendMessage(ctx context.Context, message *domain.Message, preview string, unread []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conversation domain.Conversation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", message.ConversationID).First(&conversation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrConversationNotFound
			}
			return fmt.Errorf("gorm: lock conversation %s: %w", message.ConversationID, err)
		}

		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("gorm: append message to conversation %s: %w", message.ConversationID, err)
		}

		conversation.LastMessage = preview
		conversation.LastMessageAt = message.CreatedAt
		for _, participantID := range unread {
			conversation.UnreadBy = conversation.UnreadBy.Add(participantID)
		}
		if err := tx.Save(&conversation).Error; err != nil {
			return fmt.Errorf("gorm: update conversation %s after message: %w", conversation.ID, err)
		}
		return nil
	})
}

func (r *GormConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list messages of conversation %s: %w", conversationID, err)
	}
	return messages, nil
}

// MarkRead is idempotent: a second call finds the reader already absent from
// unread-by and present in every read-by set, and writes nothing new.
func (r *GormConversationRepository) MarkRead(ctx context.Context, conversationID, readerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conversation domain.Conversation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", conversationID).First(&conversation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrConversationNotFound
			}
			return fmt.Errorf("gorm: lock conversation %s: %w", conversationID, err)
		}

		if conversation.UnreadBy.Contains(readerID) {
			conversation.UnreadBy = conversation.UnreadBy.Remove(readerID)
			if err := tx.Save(&conversation).Error; err != nil {
				return fmt.Errorf("gorm: clear unread on conversation %s: %w", conversationID, err)
			}
		}

		var messages []domain.Message
		err = tx.Where("conversation_id = ? AND sender_id <> ?", conversationID, readerID).
			Find(&messages).Error
		if err != nil {
			return fmt.Errorf("gorm: load messages of conversation %s: %w", conversationID, err)
		}
		for i := range messages {
			message := &messages[i]
			if message.ReadBy.Contains(readerID) {
				continue
			}
			message.ReadBy = message.ReadBy.Add(readerID)
			if err := tx.Save(message).Error; err != nil {
				return fmt.Errorf("gorm: mark message %s read: %w", message.ID, err)
			}
		}
		return nil
	})
}
